package scene

import "github.com/achilleasa/polaris-viewer/types"

// Number of RGBA texels used by a packed material.
const MaterialTexels = 4

// A packed surface material. Texture slots index the texture atlas or are
// set to -1 if the slot is not used.
type Material struct {
	AlbedoTexture    int32
	RoughnessTexture int32
	MetalnessTexture int32
	NormalTexture    int32
	EmissiveTexture  int32

	Albedo    types.Vec3
	Emissive  types.Vec3
	Metallic  float32
	Roughness float32
	Opacity   float32
	IOR       float32
}

// Get a material with default settings and no textures.
func DefaultMaterial() Material {
	return Material{
		AlbedoTexture:    -1,
		RoughnessTexture: -1,
		MetalnessTexture: -1,
		NormalTexture:    -1,
		EmissiveTexture:  -1,
		Albedo:           types.Vec3{1, 1, 1},
		Roughness:        1,
		Opacity:          1,
		IOR:              1,
	}
}

// Get the material row layout:
// [albedo_tex, rough_tex, metal_tex, normal_tex]
// [emissive_tex, albedo.r, albedo.g, albedo.b]
// [emissive.r, emissive.g, emissive.b, metallic]
// [roughness, opacity, ior, 0]
func (m Material) Row() [MaterialTexels * 4]float32 {
	return [MaterialTexels * 4]float32{
		float32(m.AlbedoTexture), float32(m.RoughnessTexture), float32(m.MetalnessTexture), float32(m.NormalTexture),
		float32(m.EmissiveTexture), m.Albedo[0], m.Albedo[1], m.Albedo[2],
		m.Emissive[0], m.Emissive[1], m.Emissive[2], m.Metallic,
		m.Roughness, m.Opacity, m.IOR, 0,
	}
}

// Pack materials into a RGBA texture buffer.
func PackMaterials(materials []Material, maxRowLength int) (*TextureBuffer, error) {
	tb, err := NewTextureBuffer("materials", len(materials), MaterialTexels, 4, maxRowLength)
	if err != nil {
		return nil, err
	}

	for _, mat := range materials {
		row := mat.Row()
		if err = tb.Write(row[:]...); err != nil {
			return nil, err
		}
	}

	return tb, nil
}
