package cpu

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/log"
	"github.com/achilleasa/polaris-viewer/tracer"
)

// A software tracer that accumulates samples into float RGBA targets and
// presents them as an RGBA8 image.
type Tracer struct {
	logger log.Logger

	id       string
	sampleFn SampleFunc
	workers  int

	frameW  uint32
	frameH  uint32
	targets [tracer.NumTargets][]float32
	frame   *image.RGBA

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.ChangeType]interface{}

	sceneView *SceneView
	stats     *tracer.Stats
}

// Create a new cpu tracer that uses sampleFn to generate pixel samples.
func NewTracer(id string, sampleFn SampleFunc) *Tracer {
	return &Tracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		sampleFn:     sampleFn,
		workers:      runtime.NumCPU(),
		updateBuffer: make(map[tracer.ChangeType]interface{}),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.targets = [tracer.NumTargets][]float32{}
	tr.frame = nil
	tr.sceneView = nil
}

// Allocate the accumulation targets.
func (tr *Tracer) AllocTargets(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("%w: invalid frame dims %dx%d", tracer.ErrTargetAllocation, frameW, frameH)
	}

	tr.logger.Debugf("allocating %dx%d accumulation targets", frameW, frameH)
	tr.frameW, tr.frameH = frameW, frameH
	for index := range tr.targets {
		tr.targets[index] = make([]float32, 4*frameW*frameH)
	}
	tr.frame = image.NewRGBA(image.Rect(0, 0, int(frameW), int(frameH)))
	return nil
}

// Append a change to the tracer's update buffer.
func (tr *Tracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.updateBuffer[changeType] = data
}

// Apply all pending changes from the update buffer.
func (tr *Tracer) ApplyPendingChanges() error {
	// Scene data must be applied before environment changes
	for _, changeType := range []tracer.ChangeType{tracer.SetSceneData, tracer.SetEnvironment} {
		data, exists := tr.updateBuffer[changeType]
		if !exists {
			continue
		}
		delete(tr.updateBuffer, changeType)

		switch changeType {
		case tracer.SetSceneData:
			start := time.Now()
			tr.sceneView = NewSceneView(data.(*scene.Scene))
			tr.logger.Debugf("unpacked scene data in %d ms", time.Since(start).Nanoseconds()/1e6)
		case tracer.SetEnvironment:
			if tr.sceneView == nil {
				return tracer.ErrNoSceneData
			}
			tr.sceneView.Environment = data.(scene.Environment)
		}
	}

	for changeType := range tr.updateBuffer {
		delete(tr.updateBuffer, changeType)
		return fmt.Errorf("%w: %d", tracer.ErrUnsupportedChange, changeType)
	}

	return nil
}

// Trace one sample per pixel and blend it into the request target.
func (tr *Tracer) Trace(req tracer.SampleRequest) error {
	if tr.frame == nil {
		return tracer.ErrTargetsNotAllocated
	}
	if tr.sceneView == nil {
		return tracer.ErrNoSceneData
	}

	start := time.Now()
	out := tr.targets[req.Target]
	history := tr.targets[req.History]
	weight := 1 / float32(req.SampleCount)

	var wg sync.WaitGroup
	rows := make(chan uint32, tr.frameH)
	for y := uint32(0); y < tr.frameH; y++ {
		rows <- y
	}
	close(rows)

	for worker := 0; worker < tr.workers; worker++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for y := range rows {
				for x := uint32(0); x < tr.frameW; x++ {
					sample := tr.sampleFn(tr.sceneView, tr.primaryRay(req, x, y, rng), req.MaxDepth, rng)

					offset := 4 * (y*tr.frameW + x)
					for c := uint32(0); c < 3; c++ {
						if req.SampleCount <= 1 {
							out[offset+c] = sample[c]
						} else {
							prev := history[offset+c]
							out[offset+c] = prev + (sample[c]-prev)*weight
						}
					}
					out[offset+3] = 1
				}
			}
		}(int64(req.Seed) + int64(worker))
	}
	wg.Wait()

	tr.stats.TraceTime = time.Since(start)
	return nil
}

// Convert the request target to an RGBA8 image applying gamma correction.
func (tr *Tracer) Present(req tracer.PresentRequest) error {
	if tr.frame == nil {
		return tracer.ErrTargetsNotAllocated
	}

	start := time.Now()
	src := tr.targets[req.Target]
	for y := uint32(0); y < tr.frameH; y++ {
		// Target row 0 is the bottom row of the frame
		srcRow := src[4*(tr.frameH-1-y)*tr.frameW:]
		dstRow := tr.frame.Pix[int(y)*tr.frame.Stride:]
		for x := uint32(0); x < 4*tr.frameW; x++ {
			v := srcRow[x]
			if x%4 != 3 {
				v = float32(math.Pow(float64(v), 1/2.2))
			}
			dstRow[x] = toByte(v)
		}
	}

	tr.stats.PresentTime = time.Since(start)
	return nil
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Get the presented frame.
func (tr *Tracer) Frame() *image.RGBA {
	return tr.frame
}

// Get the raw contents of an accumulation target.
func (tr *Tracer) Target(index int) []float32 {
	return tr.targets[index]
}

// Generate a primary ray through a jittered pixel position. The ray origin
// is jittered on the defocus disc if depth of field is enabled.
func (tr *Tracer) primaryRay(req tracer.SampleRequest, x, y uint32, rng *rand.Rand) Ray {
	basis := req.Basis
	jx := float32(rng.Float64() - 0.5)
	jy := float32(rng.Float64() - 0.5)
	target := basis.InitialPosition.
		Add(basis.StepX.Mul(float32(x) + jx)).
		Add(basis.StepY.Mul(float32(y) + jy))

	origin := basis.Origin
	if basis.DefocusRadius > 0 {
		angle := 2 * math.Pi * rng.Float64()
		radius := basis.DefocusRadius * float32(math.Sqrt(rng.Float64()))
		origin = origin.
			Add(basis.U.Mul(radius * float32(math.Cos(angle)))).
			Add(basis.V.Mul(radius * float32(math.Sin(angle))))
	}

	return Ray{Origin: origin, Dir: target.Sub(origin).Normalize()}
}

func toByte(v float32) uint8 {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	} else if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

var _ tracer.Tracer = (*Tracer)(nil)
