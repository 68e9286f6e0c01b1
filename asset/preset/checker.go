package preset

import (
	"image"
	"image/color"

	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/types"
)

// Generate a scene with a textured floor and a textured panel. Both meshes
// use separately generated but identical checker textures.
func Checker() *input.Scene {
	sc := input.NewScene()
	sc.Camera.Polar = 70
	sc.Camera.Azimuthal = 30
	sc.Camera.LookAt = types.Vec3{0, 0.5, 0}
	sc.Camera.Radial = 4
	sc.Camera.FocusDistance = 4
	sc.Environment.Color = types.Vec3{0.6, 0.7, 1.0}

	floorMat := input.NewMaterial("floor")
	floorMat.AlbedoMap = &input.TextureRef{Image: checkerImage(256, 8)}
	floor := input.NewMesh("floor")
	floor.Materials = []*input.Material{floorMat}
	appendQuad(floor, types.Vec3{-2, 0, -2}, types.Vec3{0, 0, 4}, types.Vec3{4, 0, 0}, 0)

	panelMat := input.NewMaterial("panel")
	panelMat.AlbedoMap = &input.TextureRef{Image: checkerImage(256, 8)}
	panelMat.Roughness = 0.4
	panel := input.NewMesh("panel")
	panel.Materials = []*input.Material{panelMat}
	appendQuad(panel, types.Vec3{-0.5, 0, 0}, types.Vec3{1, 0, 0}, types.Vec3{0, 1, 0}, 0)
	panel.Transform = types.Rotate4(types.Vec3{0, 1, 0}, 20)

	sc.Meshes = append(sc.Meshes, floor, panel)
	return sc
}

func checkerImage(size, cells int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cellSize := size / cells
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{230, 230, 230, 255}
			if (x/cellSize+y/cellSize)%2 == 1 {
				c = color.RGBA{40, 40, 40, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
