package preset

import (
	"fmt"

	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/types"
)

// Generate a grid of faceted spheres with varying roughness and metalness.
// Sphere meshes are non-indexed and carry no normals.
func Spheres() *input.Scene {
	sc := input.NewScene()
	sc.Camera.Polar = 75
	sc.Camera.Radial = 6
	sc.Camera.FocusDistance = 6
	sc.Camera.DefocusAngle = 0.6
	sc.Environment.Color = types.Vec3{0.8, 0.85, 1.0}

	groundMat := input.NewMaterial("ground")
	groundMat.Albedo = types.Vec3{0.5, 0.5, 0.5}
	ground := input.NewMesh("ground")
	ground.Materials = []*input.Material{groundMat}
	appendQuad(ground, types.Vec3{-4, -0.5, -4}, types.Vec3{0, 0, 8}, types.Vec3{8, 0, 0}, 0)
	sc.Meshes = append(sc.Meshes, ground)

	const gridSize = 3
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			mat := input.NewMaterial(fmt.Sprintf("sphere %d-%d", row, col))
			mat.Albedo = types.Vec3{0.9, 0.3 + 0.3*float32(col), 0.2}
			mat.Roughness = float32(col) / float32(gridSize-1)
			mat.Metallic = float32(row) / float32(gridSize-1)

			sphere := uvSphere(mat.Name, 8, 12)
			sphere.Materials = []*input.Material{mat}
			sphere.Transform = types.Translate4(types.Vec3{float32(col-1) * 1.2, 0, float32(row-1) * 1.2}).Mul4(types.Scale4(types.Vec3{0.5, 0.5, 0.5}))
			sc.Meshes = append(sc.Meshes, triangleSoup(sphere))
		}
	}

	return sc
}
