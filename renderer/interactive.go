package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/camera"
	"github.com/achilleasa/polaris-viewer/log"
	"github.com/achilleasa/polaris-viewer/tracer/opengl"
	"github.com/achilleasa/polaris-viewer/types"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Loads the scene to be displayed. It runs on a separate goroutine.
type SceneLoader func(ctx context.Context) (*scene.Scene, error)

type loadResult struct {
	sc  *scene.Scene
	err error
}

var keyControls = map[glfw.Key]control{
	glfw.KeyUp:           orbitUp,
	glfw.KeyDown:         orbitDown,
	glfw.KeyLeft:         orbitLeft,
	glfw.KeyRight:        orbitRight,
	glfw.KeyW:            zoomIn,
	glfw.KeyS:            zoomOut,
	glfw.KeyEqual:        fovIncrease,
	glfw.KeyKPAdd:        fovIncrease,
	glfw.KeyMinus:        fovDecrease,
	glfw.KeyKPSubtract:   fovDecrease,
	glfw.KeyRightBracket: focusIncrease,
	glfw.KeyLeftBracket:  focusDecrease,
	glfw.KeyPeriod:       defocusIncrease,
	glfw.KeyComma:        defocusDecrease,
	glfw.KeyPageUp:       depthIncrease,
	glfw.KeyPageDown:     depthDecrease,
}

// An interactive glfw window that progressively renders a scene using the
// opengl tracer.
type interactiveGLRenderer struct {
	logger log.Logger

	// opengl handles
	window *glfw.Window
	tracer *opengl.Tracer

	loop   *Loop
	camera *camera.Camera

	// async scene loading
	cancelFn context.CancelFunc
	loadChan chan loadResult
	loaded   bool

	// state
	lastCursorPos types.Vec2
	dragging      bool
	lastTitle     uint32
}

// Create a new interactive renderer. The scene is loaded asynchronously by
// calling load; the window displays a blank frame until loading completes.
//
// The caller must invoke this method and Render from the main thread.
func NewInteractive(ctx context.Context, load SceneLoader, opts Options) (Renderer, error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	traceSrc, err := opengl.LoadTraceShader(opts.TraceShader)
	if err != nil {
		return nil, err
	}

	r := &interactiveGLRenderer{
		logger:   log.New("viewer"),
		loadChan: make(chan loadResult, 1),
		camera:   camera.NewOrbital(90, 0, 5, types.Vec3{}, 45, 5, 0),
	}

	err = r.initGL(opts)
	if err != nil {
		r.Close()
		return nil, err
	}

	r.tracer, err = opengl.NewTracer("gl", traceSrc)
	if err != nil {
		r.Close()
		return nil, err
	}

	fbW, fbH := r.window.GetFramebufferSize()
	r.tracer.SetViewport(int32(fbW), int32(fbH))
	opts.FrameW, opts.FrameH = uint32(fbW), uint32(fbH)
	r.loop, err = NewLoop(r.tracer, r.camera, opts)
	if err != nil {
		r.Close()
		return nil, err
	}

	loadCtx, cancelFn := context.WithCancel(ctx)
	r.cancelFn = cancelFn
	go func() {
		sc, err := load(loadCtx)
		r.loadChan <- loadResult{sc: sc, err: err}
	}()

	return r, nil
}

func (r *interactiveGLRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), "polaris viewer", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %w", err)
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %w", err)
	}

	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)
	r.window.SetScrollCallback(r.onScrollEvent)
	r.window.SetFramebufferSizeCallback(r.onFramebufferSizeEvent)

	return nil
}

// Render until the window is closed.
func (r *interactiveGLRenderer) Render() error {
	for !r.window.ShouldClose() {
		glfw.PollEvents()

		if !r.loaded {
			err := r.pollSceneLoader()
			if err != nil {
				return err
			}
			if !r.loaded {
				r.clear()
				glfw.WaitEventsTimeout(0.05)
				continue
			}
		}

		rendered, err := r.loop.Frame()
		if errors.Is(err, ErrEmptyScene) {
			r.clear()
			glfw.WaitEventsTimeout(0.05)
			continue
		} else if err != nil {
			return err
		}

		if !rendered {
			// Sample cap reached; wait for input that triggers a reset
			glfw.WaitEventsTimeout(0.1)
			continue
		}

		r.updateTitle()
		r.window.SwapBuffers()
	}
	return nil
}

// Install the loaded scene if the loader has completed.
func (r *interactiveGLRenderer) pollSceneLoader() error {
	select {
	case res := <-r.loadChan:
		if res.err != nil {
			return fmt.Errorf("viewer: could not load scene: %w", res.err)
		}
		r.loaded = true
		if res.sc.IsEmpty() {
			r.logger.Warning("scene contains no geometry; nothing to render")
		}

		r.camera = camera.FromScene(res.sc.Camera)
		r.loop.SetCamera(r.camera)
		r.loop.SetScene(res.sc)
		r.logger.Noticef("scene loaded (%d triangles, %d BVH nodes)", res.sc.NumTriangles, res.sc.BvhLength)
	default:
	}
	return nil
}

func (r *interactiveGLRenderer) clear() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	r.window.SwapBuffers()
}

func (r *interactiveGLRenderer) updateTitle() {
	samples := r.loop.SampleCount()
	if samples != 1 && samples-r.lastTitle < 16 {
		return
	}
	r.lastTitle = samples
	r.window.SetTitle(fmt.Sprintf("polaris viewer - %d spp, depth %d", samples, r.loop.MaxDepth()))
}

// Shutdown renderer and tracer.
func (r *interactiveGLRenderer) Close() {
	if r.cancelFn != nil {
		r.cancelFn()
		r.cancelFn = nil
	}
	if r.loop != nil {
		r.logger.Noticef("render statistics\n%s", r.loop.Stats().Table())
		r.loop.Close()
		r.loop = nil
		r.tracer = nil
	} else if r.tracer != nil {
		r.tracer.Close()
		r.tracer = nil
	}
	if r.window != nil {
		r.window.Destroy()
		r.window = nil
	}
	glfw.Terminate()
}

// Get render statistics.
func (r *interactiveGLRenderer) Stats() LoopStats {
	if r.loop == nil {
		return LoopStats{}
	}
	return r.loop.Stats()
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
		return
	}

	ctrl, exists := keyControls[key]
	if !exists {
		return
	}

	// Double speed if shift is pressed
	var scale float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		scale = 2.0
	}
	applyControl(ctrl, r.camera, r.loop, scale)
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	r.dragging = action == glfw.Press
	if r.dragging {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.dragging {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.Vec2{float32(xPos), float32(yPos)}
	delta := r.lastCursorPos.Sub(newPos)
	r.lastCursorPos = newPos
	r.camera.Orbit(delta[1]*mouseSensitivityY, delta[0]*mouseSensitivityX)
}

func (r *interactiveGLRenderer) onScrollEvent(w *glfw.Window, xOff, yOff float64) {
	r.camera.Zoom(-float32(yOff) * zoomStep)
}

func (r *interactiveGLRenderer) onFramebufferSizeEvent(w *glfw.Window, width, height int) {
	// Minimized windows report a zero sized framebuffer
	if width == 0 || height == 0 {
		return
	}

	r.tracer.SetViewport(int32(width), int32(height))
	if err := r.loop.Resize(uint32(width), uint32(height)); err != nil {
		r.logger.Errorf("could not resize accumulation targets: %v", err)
		w.SetShouldClose(true)
	}
}
