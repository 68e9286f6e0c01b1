package renderer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/camera"
	"github.com/achilleasa/polaris-viewer/log"
	"github.com/achilleasa/polaris-viewer/tracer"
)

// Loop drives a tracer progressively. Each call to Frame traces one sample
// per pixel into the offscreen accumulation target, using the other target
// as history, presents it and swaps the two targets. Any change to the camera,
// scene, environment, depth budget or frame size resets accumulation.
type Loop struct {
	logger log.Logger

	tracer tracer.Tracer
	camera *camera.Camera
	opts   Options
	rng    *rand.Rand

	sc *scene.Scene

	// Index of the target that receives the next sample.
	target       int
	sampleCount  uint32
	pendingReset bool

	stats LoopStats
}

// Create a new progressive loop and allocate the tracer's accumulation targets.
func NewLoop(tr tracer.Tracer, cam *camera.Camera, opts Options) (*Loop, error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}
	err = tr.AllocTargets(opts.FrameW, opts.FrameH)
	if err != nil {
		return nil, fmt.Errorf("progressive loop: %w", err)
	}

	return &Loop{
		logger:       log.New("progressive loop"),
		tracer:       tr,
		camera:       cam,
		opts:         opts,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		pendingReset: true,
	}, nil
}

// Install a packed scene. The scene buffers and its environment are queued
// for upload and applied before the next frame.
func (l *Loop) SetScene(sc *scene.Scene) {
	l.sc = sc
	if sc == nil {
		return
	}
	l.tracer.AppendChange(tracer.SetSceneData, sc)
	l.tracer.AppendChange(tracer.SetEnvironment, sc.Environment)
	l.pendingReset = true
}

// Replace the camera used for generating primary rays.
func (l *Loop) SetCamera(cam *camera.Camera) {
	l.camera = cam
	l.pendingReset = true
}

// Replace the scene background. The installed scene is left untouched.
func (l *Loop) SetEnvironment(env scene.Environment) {
	l.tracer.AppendChange(tracer.SetEnvironment, env)
	l.pendingReset = true
}

// Set the path depth budget. Values below 1 are clamped to 1.
func (l *Loop) SetMaxDepth(depth uint32) {
	if depth < 1 {
		depth = 1
	}
	if depth == l.opts.MaxDepth {
		return
	}
	l.opts.MaxDepth = depth
	l.pendingReset = true
}

// Reallocate the accumulation targets for a new frame size.
func (l *Loop) Resize(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return ErrInvalidFrameSize
	}
	if frameW == l.opts.FrameW && frameH == l.opts.FrameH {
		return nil
	}

	err := l.tracer.AllocTargets(frameW, frameH)
	if err != nil {
		return fmt.Errorf("progressive loop: %w", err)
	}
	l.opts.FrameW = frameW
	l.opts.FrameH = frameH
	l.target = 0
	l.pendingReset = true
	l.logger.Debugf("resized targets to %dx%d", frameW, frameH)
	return nil
}

// Discard accumulated samples on the next frame.
func (l *Loop) Reset() {
	l.pendingReset = true
}

// Render one frame. It returns false without rendering if the sample cap
// has been reached.
func (l *Loop) Frame() (bool, error) {
	if l.sc == nil {
		return false, ErrSceneNotDefined
	}
	if l.sc.IsEmpty() {
		return false, ErrEmptyScene
	}

	if l.camera.IsDirty() {
		l.camera.ClearDirty()
		l.pendingReset = true
	}

	var frame FrameStats
	if l.pendingReset {
		l.pendingReset = false
		l.sampleCount = 0
		frame.Reset = true
	}

	err := l.tracer.ApplyPendingChanges()
	if err != nil {
		return false, err
	}

	if l.opts.MaxSamples != 0 && l.sampleCount >= l.opts.MaxSamples {
		return false, nil
	}

	start := time.Now()
	l.sampleCount++
	depth := l.opts.MaxDepth
	if l.sampleCount == 1 {
		depth = l.previewDepth()
	}

	history := 1 - l.target
	err = l.tracer.Trace(tracer.SampleRequest{
		Target:      l.target,
		History:     history,
		SampleCount: l.sampleCount,
		MaxDepth:    depth,
		Basis:       l.camera.RayBasis(l.opts.FrameW, l.opts.FrameH),
		Seed:        l.rng.Uint32(),
	})
	if err != nil {
		return false, err
	}

	err = l.tracer.Present(tracer.PresentRequest{
		Target:      l.target,
		SampleCount: l.sampleCount,
	})
	if err != nil {
		return false, err
	}
	l.target = history

	trStats := l.tracer.Stats()
	frame.SampleCount = l.sampleCount
	frame.MaxDepth = depth
	frame.TraceTime = trStats.TraceTime
	frame.PresentTime = trStats.PresentTime
	frame.RenderTime = time.Since(start)
	l.stats.record(frame)

	if frame.Reset {
		l.logger.Debugf("accumulation reset; preview frame rendered in %d ms", frame.RenderTime.Nanoseconds()/1e6)
	}
	return true, nil
}

// Get the depth used for the first sample after a reset. A zero preview
// depth disables the preview pass.
func (l *Loop) previewDepth() uint32 {
	if l.opts.PreviewDepth == 0 || l.opts.PreviewDepth > l.opts.MaxDepth {
		return l.opts.MaxDepth
	}
	return l.opts.PreviewDepth
}

// Number of samples accumulated since the last reset.
func (l *Loop) SampleCount() uint32 {
	return l.sampleCount
}

// The configured path depth budget.
func (l *Loop) MaxDepth() uint32 {
	return l.opts.MaxDepth
}

// Index of the target holding the most recently presented frame.
func (l *Loop) FrontTarget() int {
	return 1 - l.target
}

// Current frame dimensions.
func (l *Loop) FrameSize() (uint32, uint32) {
	return l.opts.FrameW, l.opts.FrameH
}

func (l *Loop) Stats() LoopStats {
	return l.stats
}

// Shutdown the loop and its tracer.
func (l *Loop) Close() {
	if l.tracer != nil {
		l.tracer.Close()
		l.tracer = nil
	}
}
