package camera

import (
	"fmt"
	"math"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/types"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinFOV = 1
	MaxFOV = 179

	MinDefocusAngle = 0
	MaxDefocusAngle = 45

	MinFocusDistance = 0.1

	// Polar angles are kept away from the poles so the up vector never
	// becomes parallel to the view direction.
	MinPolar = 0.1
	MaxPolar = 179.9

	MinRadial = 0.05

	// Zoom deltas are scaled by exp(radial*zoomRate - zoomBias).
	zoomRate = 0.5
	zoomBias = 1.0
)

// The ray generation basis consumed by the shading stage. Ray directions for
// pixel (x, y) are computed as InitialPosition + x*StepX + y*StepY - Origin.
type RayBasis struct {
	Origin types.Vec3

	U types.Vec3
	V types.Vec3
	W types.Vec3

	StepX           types.Vec3
	StepY           types.Vec3
	InitialPosition types.Vec3

	DefocusRadius float32
}

func (rb RayBasis) String() string {
	return fmt.Sprintf(
		"Ray basis:\nOrigin : (%3.3f, %3.3f, %3.3f)\nStepX  : (%3.3f, %3.3f, %3.3f)\nStepY  : (%3.3f, %3.3f, %3.3f)\nInitial: (%3.3f, %3.3f, %3.3f)\nDefocus: %3.3f",
		rb.Origin[0], rb.Origin[1], rb.Origin[2],
		rb.StepX[0], rb.StepX[1], rb.StepX[2],
		rb.StepY[0], rb.StepY[1], rb.StepY[2],
		rb.InitialPosition[0], rb.InitialPosition[1], rb.InitialPosition[2],
		rb.DefocusRadius,
	)
}

// An orbital camera that circles a look-at point. The camera position is
// defined in spherical coordinates: the polar angle is measured from the up
// axis and the azimuthal angle around it. All angles are in degrees.
//
// Any change to the camera parameters marks the camera as dirty. The flag is
// cleared by the consumer of the change via ClearDirty.
type Camera struct {
	polar     float32
	azimuthal float32
	radial    float32
	lookAt    types.Vec3
	up        types.Vec3

	fov           float32
	focusDistance float32
	defocusAngle  float32

	dirty bool
}

// Create a new orbital camera. Parameters are clamped to their valid ranges.
func NewOrbital(polar, azimuthal, radial float32, lookAt types.Vec3, fov, focusDistance, defocusAngle float32) *Camera {
	c := &Camera{
		up:    types.Vec3{0, 1, 0},
		dirty: true,
	}

	c.polar = clampPolar(polar)
	c.azimuthal = wrapAzimuth(azimuthal)
	c.radial = clampRadial(radial)
	c.lookAt = lookAt
	c.fov = mgl32.Clamp(fov, MinFOV, MaxFOV)
	c.focusDistance = clampFocus(focusDistance)
	c.defocusAngle = mgl32.Clamp(defocusAngle, MinDefocusAngle, MaxDefocusAngle)
	return c
}

// Create an orbital camera from the settings stored in a packed scene.
func FromScene(settings scene.Camera) *Camera {
	return NewOrbital(
		settings.Polar, settings.Azimuthal, settings.Radial, settings.LookAt,
		settings.FOV, settings.FocusDistance, settings.DefocusAngle,
	)
}

func (c *Camera) Polar() float32         { return c.polar }
func (c *Camera) Azimuthal() float32     { return c.azimuthal }
func (c *Camera) Radial() float32        { return c.radial }
func (c *Camera) LookAt() types.Vec3     { return c.lookAt }
func (c *Camera) FOV() float32           { return c.fov }
func (c *Camera) FocusDistance() float32 { return c.focusDistance }
func (c *Camera) DefocusAngle() float32  { return c.defocusAngle }

// Returns true if the camera changed since the last call to ClearDirty.
func (c *Camera) IsDirty() bool {
	return c.dirty
}

// Mark camera changes as consumed.
func (c *Camera) ClearDirty() {
	c.dirty = false
}

// Get the camera position in world space.
func (c *Camera) Position() types.Vec3 {
	polar := float64(mgl32.DegToRad(c.polar))
	azimuthal := float64(mgl32.DegToRad(c.azimuthal))

	return c.lookAt.Add(types.Vec3{
		float32(math.Sin(polar) * math.Sin(azimuthal)),
		float32(math.Cos(polar)),
		float32(math.Sin(polar) * math.Cos(azimuthal)),
	}.Mul(c.radial))
}

// Set the orbit angles.
func (c *Camera) SetOrbit(polar, azimuthal float32) {
	c.setValue(&c.polar, clampPolar(polar))
	c.setValue(&c.azimuthal, wrapAzimuth(azimuthal))
}

// Adjust the orbit angles by the given deltas.
func (c *Camera) Orbit(dPolar, dAzimuthal float32) {
	c.SetOrbit(c.polar+dPolar, c.azimuthal+dAzimuthal)
}

// Set the distance from the look-at point.
func (c *Camera) SetRadial(radial float32) {
	c.setValue(&c.radial, clampRadial(radial))
}

// Move the camera towards (negative delta) or away from the look-at point.
// The applied delta is damped so zooming close to the look-at point is slow.
func (c *Camera) Zoom(delta float32) {
	scale := float32(math.Exp(float64(c.radial*zoomRate - zoomBias)))
	c.SetRadial(c.radial + delta*scale)
}

// Set the look-at point.
func (c *Camera) SetLookAt(lookAt types.Vec3) {
	if lookAt != c.lookAt {
		c.lookAt = lookAt
		c.dirty = true
	}
}

// Set the vertical field of view.
func (c *Camera) SetFOV(fov float32) {
	c.setValue(&c.fov, mgl32.Clamp(fov, MinFOV, MaxFOV))
}

// Set the focus distance.
func (c *Camera) SetFocusDistance(dist float32) {
	c.setValue(&c.focusDistance, clampFocus(dist))
}

// Set the defocus (aperture) angle.
func (c *Camera) SetDefocusAngle(angle float32) {
	c.setValue(&c.defocusAngle, mgl32.Clamp(angle, MinDefocusAngle, MaxDefocusAngle))
}

// Get the depth of field disc radius.
func (c *Camera) DefocusRadius() float32 {
	return c.focusDistance * float32(math.Tan(float64(mgl32.DegToRad(c.defocusAngle))/2))
}

// Calculate the ray generation basis for a frame of the given dimensions.
// Calling RayBasis does not clear the dirty flag.
func (c *Camera) RayBasis(width, height uint32) RayBasis {
	pos := c.Position()
	w := pos.Sub(c.lookAt).Normalize()
	u := c.up.Cross(w).Normalize()
	v := w.Cross(u)

	viewportHeight := 2 * c.focusDistance * float32(math.Tan(float64(mgl32.DegToRad(c.fov))/2))
	viewportWidth := viewportHeight * float32(width) / float32(height)

	stepX := u.Mul(viewportWidth / float32(width))
	stepY := v.Mul(viewportHeight / float32(height))

	initial := pos.
		Sub(u.Mul(viewportWidth / 2)).
		Sub(v.Mul(viewportHeight / 2)).
		Sub(w.Mul(c.focusDistance)).
		Add(stepX.Mul(0.5)).
		Add(stepY.Mul(0.5))

	return RayBasis{
		Origin:          pos,
		U:               u,
		V:               v,
		W:               w,
		StepX:           stepX,
		StepY:           stepY,
		InitialPosition: initial,
		DefocusRadius:   c.DefocusRadius(),
	}
}

func (c *Camera) setValue(field *float32, value float32) {
	if *field != value {
		*field = value
		c.dirty = true
	}
}

func clampPolar(polar float32) float32 {
	return mgl32.Clamp(polar, MinPolar, MaxPolar)
}

func clampRadial(radial float32) float32 {
	if radial < MinRadial {
		return MinRadial
	}
	return radial
}

func clampFocus(dist float32) float32 {
	if dist < MinFocusDistance {
		return MinFocusDistance
	}
	return dist
}

func wrapAzimuth(azimuthal float32) float32 {
	azimuthal = float32(math.Mod(float64(azimuthal), 360))
	if azimuthal < 0 {
		azimuthal += 360
	}
	return azimuthal
}
