package opengl

import (
	"fmt"
	"time"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/log"
	"github.com/achilleasa/polaris-viewer/tracer"
	"github.com/go-gl/gl/v3.3-core/gl"
)

// A tracer that runs the trace shader as a fullscreen fragment pass over
// float accumulation targets and composites them to the default framebuffer.
//
// All methods must be invoked from the thread that owns the current GL context.
type Tracer struct {
	logger log.Logger

	id string

	traceProgram     *program
	compositeProgram *program
	vao              uint32

	textures *textureSet
	targets  [tracer.NumTargets]*target
	frameW   uint32
	frameH   uint32

	// Size of the default framebuffer used by Present.
	viewportW int32
	viewportH int32

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.ChangeType]interface{}

	sceneData   *scene.Scene
	environment scene.Environment

	stats *tracer.Stats
}

// Create a new opengl tracer. GL must already be initialized and the
// context made current. The traceSrc argument contains the trace shader body.
func NewTracer(id, traceSrc string) (*Tracer, error) {
	tr := &Tracer{
		logger:       log.New(fmt.Sprintf("opengl tracer (%s)", id)),
		id:           id,
		textures:     newTextureSet(),
		updateBuffer: make(map[tracer.ChangeType]interface{}),
		stats:        &tracer.Stats{},
	}

	var err error
	tr.traceProgram, err = newProgram("trace", quadVertexSrc, traceProgramSource(traceSrc))
	if err != nil {
		tr.Close()
		return nil, err
	}
	tr.compositeProgram, err = newProgram("composite", quadVertexSrc, compositeFragmentSrc)
	if err != nil {
		tr.Close()
		return nil, err
	}

	// Sampler units never change
	tr.traceProgram.use()
	for unit, name := range samplerUniforms {
		tr.traceProgram.setInt(name, int32(unit))
	}
	tr.compositeProgram.use()
	tr.compositeProgram.setInt("u_frame", 0)
	gl.UseProgram(0)

	// Core profile requires a bound VAO even though the fullscreen
	// triangle has no vertex attributes.
	gl.GenVertexArrays(1, &tr.vao)

	tr.logger.Noticef("initialized (renderer: %s)", gl.GoStr(gl.GetString(gl.RENDERER)))
	return tr, nil
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.releaseTargets()
	if tr.textures != nil {
		tr.textures.Release()
	}
	tr.traceProgram.release()
	tr.compositeProgram.release()
	if tr.vao != 0 {
		gl.DeleteVertexArrays(1, &tr.vao)
		tr.vao = 0
	}
	tr.sceneData = nil
}

// Allocate the accumulation targets.
func (tr *Tracer) AllocTargets(frameW, frameH uint32) error {
	tr.releaseTargets()
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("%w: invalid frame dims %dx%d", tracer.ErrTargetAllocation, frameW, frameH)
	}

	tr.logger.Debugf("allocating %dx%d accumulation targets", frameW, frameH)
	for index := range tr.targets {
		t, err := newTarget(index, frameW, frameH)
		if err != nil {
			tr.releaseTargets()
			return fmt.Errorf("%w: %v", tracer.ErrTargetAllocation, err)
		}
		tr.targets[index] = t
	}
	tr.frameW, tr.frameH = frameW, frameH
	if tr.viewportW == 0 || tr.viewportH == 0 {
		tr.viewportW, tr.viewportH = int32(frameW), int32(frameH)
	}
	return nil
}

// Set the size of the default framebuffer used when presenting.
func (tr *Tracer) SetViewport(width, height int32) {
	tr.viewportW, tr.viewportH = width, height
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

		var err error
		start := time.Now()
		switch changeType {
		case tracer.SetSceneData:
			sc := data.(*scene.Scene)
			err = tr.textures.UploadSceneData(sc)
			if err == nil {
				tr.sceneData = sc
				tr.logger.Debugf("uploaded %s of scene data in %d ms", fmtBytes(sc.SizeInBytes()), time.Since(start).Nanoseconds()/1e6)
			}
		case tracer.SetEnvironment:
			if tr.sceneData == nil {
				return tracer.ErrNoSceneData
			}
			env := data.(scene.Environment)
			err = tr.textures.UploadEnvironment(env)
			if err == nil {
				tr.environment = env
			}
		}
		if err != nil {
			return fmt.Errorf("opengl tracer (%s): %w", tr.id, err)
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
	if tr.targets[0] == nil {
		return tracer.ErrTargetsNotAllocated
	}
	if tr.sceneData == nil {
		return tracer.ErrNoSceneData
	}

	start := time.Now()
	out := tr.targets[req.Target]
	history := tr.targets[req.History]

	gl.BindFramebuffer(gl.FRAMEBUFFER, out.fbo)
	gl.Viewport(0, 0, int32(tr.frameW), int32(tr.frameH))
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	p := tr.traceProgram
	p.use()
	history.tex.bind(unitHistory)
	tr.textures.Bind()

	p.setInt("u_bvh_length", int32(tr.sceneData.BvhLength))
	p.setInt("u_max_texture_size", int32(tr.sceneData.MaxTextureSize))
	p.setInt("u_num_triangles", int32(tr.sceneData.NumTriangles))
	p.setInt("u_sample_count", int32(req.SampleCount))
	p.setInt("u_max_depth", int32(req.MaxDepth))
	p.setUint("u_seed", req.Seed)

	basis := req.Basis
	p.setVec3("u_cam_origin", basis.Origin)
	p.setVec3("u_cam_u", basis.U)
	p.setVec3("u_cam_v", basis.V)
	p.setVec3("u_cam_step_x", basis.StepX)
	p.setVec3("u_cam_step_y", basis.StepY)
	p.setVec3("u_cam_initial", basis.InitialPosition)
	p.setFloat("u_defocus_radius", basis.DefocusRadius)

	p.setVec3("u_env_color", tr.environment.Color)
	p.setFloat("u_env_intensity", tr.environment.Intensity)
	var hasEnvMap int32
	if tr.environment.Map != nil {
		hasEnvMap = 1
	}
	p.setInt("u_has_env_map", hasEnvMap)

	gl.BindVertexArray(tr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	tr.stats.TraceTime = time.Since(start)
	return checkError("trace")
}

// Composite the request target to the default framebuffer.
func (tr *Tracer) Present(req tracer.PresentRequest) error {
	if tr.targets[0] == nil {
		return tracer.ErrTargetsNotAllocated
	}

	start := time.Now()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, tr.viewportW, tr.viewportH)

	tr.compositeProgram.use()
	tr.targets[req.Target].tex.bind(0)
	gl.BindVertexArray(tr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	tr.stats.PresentTime = time.Since(start)
	return checkError("present")
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

func (tr *Tracer) releaseTargets() {
	for index, t := range tr.targets {
		t.release()
		tr.targets[index] = nil
	}
}

func fmtBytes(size int) string {
	if size < 1024 {
		return fmt.Sprintf("%d bytes", size)
	}
	return fmt.Sprintf("%d kb", size/1024)
}

var _ tracer.Tracer = (*Tracer)(nil)
