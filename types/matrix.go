package types

import "github.com/go-gl/mathgl/mgl32"

// A column-major 4x4 matrix.
type Mat4 mgl32.Mat4

// Create identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Create a non-uniform scale matrix.
func Scale4(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Create a rotation matrix around axis. The angle is specified in degrees.
func Rotate4(axis Vec3, angle float32) Mat4 {
	return Mat4(mgl32.HomogRotate3D(mgl32.DegToRad(angle), mgl32.Vec3(axis.Normalize())))
}

// Multiply with another matrix.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Calculate matrix inverse.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Returns true if this is the identity matrix.
func (m Mat4) IsIdent() bool {
	return mgl32.Mat4(m).ApproxEqual(mgl32.Ident4())
}

// Transform a point (w = 1).
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	return Vec3(mgl32.TransformCoordinate(mgl32.Vec3(v), mgl32.Mat4(m)))
}

// Transform a direction (w = 0). The result is not normalized.
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return Vec3(mgl32.TransformNormal(mgl32.Vec3(v), mgl32.Mat4(m)))
}

// Get the matrix for transforming surface normals (inverse transpose of
// the top-left 3x3 block).
func (m Mat4) NormalMat() Mat4 {
	return Mat4(mgl32.Mat4(m).Mat3().Inv().Transpose().Mat4())
}
