package renderer

import (
	"github.com/achilleasa/polaris-viewer/camera"
)

// Interactive camera and render controls.
type control uint8

const (
	orbitUp control = iota
	orbitDown
	orbitLeft
	orbitRight
	zoomIn
	zoomOut
	fovIncrease
	fovDecrease
	focusIncrease
	focusDecrease
	defocusIncrease
	defocusDecrease
	depthIncrease
	depthDecrease
)

// Control step sizes.
const (
	orbitStep   float32 = 2
	zoomStep    float32 = 0.25
	fovStep     float32 = 1
	focusStep   float32 = 0.1
	defocusStep float32 = 0.1

	// Coefficients for converting cursor deltas to orbit angles.
	mouseSensitivityX float32 = 0.25
	mouseSensitivityY float32 = 0.25
)

// Apply a control to the camera or loop. Scale multiplies the control step.
// Camera setters clamp values to their valid ranges; depth changes never drop
// below one.
func applyControl(ctrl control, cam *camera.Camera, loop *Loop, scale float32) {
	switch ctrl {
	case orbitUp:
		cam.Orbit(-orbitStep*scale, 0)
	case orbitDown:
		cam.Orbit(orbitStep*scale, 0)
	case orbitLeft:
		cam.Orbit(0, -orbitStep*scale)
	case orbitRight:
		cam.Orbit(0, orbitStep*scale)
	case zoomIn:
		cam.Zoom(-zoomStep * scale)
	case zoomOut:
		cam.Zoom(zoomStep * scale)
	case fovIncrease:
		cam.SetFOV(cam.FOV() + fovStep*scale)
	case fovDecrease:
		cam.SetFOV(cam.FOV() - fovStep*scale)
	case focusIncrease:
		cam.SetFocusDistance(cam.FocusDistance() + focusStep*scale)
	case focusDecrease:
		cam.SetFocusDistance(cam.FocusDistance() - focusStep*scale)
	case defocusIncrease:
		cam.SetDefocusAngle(cam.DefocusAngle() + defocusStep*scale)
	case defocusDecrease:
		cam.SetDefocusAngle(cam.DefocusAngle() - defocusStep*scale)
	case depthIncrease:
		loop.SetMaxDepth(loop.MaxDepth() + 1)
	case depthDecrease:
		if loop.MaxDepth() > 1 {
			loop.SetMaxDepth(loop.MaxDepth() - 1)
		}
	}
}
