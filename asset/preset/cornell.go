package preset

import (
	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/types"
)

// Generate a Cornell box with an area light, a metal sphere and a glass sphere.
func Cornell() *input.Scene {
	sc := input.NewScene()
	sc.Camera.LookAt = types.Vec3{0, 1, 0}
	sc.Camera.Radial = 3.8
	sc.Camera.FOV = 40
	sc.Camera.FocusDistance = 3.8
	sc.Environment.Color = types.Vec3{0, 0, 0}
	sc.Environment.Intensity = 0

	white := input.NewMaterial("white")
	white.Albedo = types.Vec3{0.73, 0.73, 0.73}
	red := input.NewMaterial("red")
	red.Albedo = types.Vec3{0.65, 0.05, 0.05}
	green := input.NewMaterial("green")
	green.Albedo = types.Vec3{0.12, 0.45, 0.15}

	// Box spans [-1, 1] x [0, 2] x [-1, 1] with the front (+z) open.
	walls := input.NewMesh("walls")
	walls.Materials = []*input.Material{white, red, green}
	appendQuad(walls, types.Vec3{-1, 0, -1}, types.Vec3{0, 0, 2}, types.Vec3{2, 0, 0}, 0) // floor
	appendQuad(walls, types.Vec3{-1, 2, -1}, types.Vec3{2, 0, 0}, types.Vec3{0, 0, 2}, 0) // ceiling
	appendQuad(walls, types.Vec3{-1, 0, -1}, types.Vec3{2, 0, 0}, types.Vec3{0, 2, 0}, 0) // back
	appendQuad(walls, types.Vec3{-1, 0, -1}, types.Vec3{0, 2, 0}, types.Vec3{0, 0, 2}, 1) // left
	appendQuad(walls, types.Vec3{1, 0, -1}, types.Vec3{0, 0, 2}, types.Vec3{0, 2, 0}, 2)  // right

	lightMat := input.NewMaterial("light")
	lightMat.Emissive = types.Vec3{1, 1, 1}
	lightMat.EmissiveIntensity = 15
	light := input.NewMesh("light")
	light.Materials = []*input.Material{lightMat}
	appendQuad(light, types.Vec3{-0.25, 1.99, -0.25}, types.Vec3{0.5, 0, 0}, types.Vec3{0, 0, 0.5}, 0)

	metalMat := input.NewMaterial("metal")
	metalMat.Albedo = types.Vec3{0.8, 0.8, 0.9}
	metalMat.Metallic = 1
	metalMat.Roughness = 0.05
	metal := uvSphere("metal sphere", 16, 32)
	metal.Materials = []*input.Material{metalMat}
	metal.Transform = types.Translate4(types.Vec3{-0.4, 0.3, -0.3}).Mul4(types.Scale4(types.Vec3{0.3, 0.3, 0.3}))

	glassMat := input.NewMaterial("glass")
	glassMat.Roughness = 0
	glassMat.Transmission = 1
	glassMat.IOR = 1.5
	glass := uvSphere("glass sphere", 16, 32)
	glass.Materials = []*input.Material{glassMat}
	glass.Transform = types.Translate4(types.Vec3{0.4, 0.35, 0.3}).Mul4(types.Scale4(types.Vec3{0.35, 0.35, 0.35}))

	sc.Meshes = append(sc.Meshes, walls, light, metal, glass)
	return sc
}
