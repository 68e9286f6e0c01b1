package input

import (
	"image"

	"github.com/achilleasa/polaris-viewer/types"
	"github.com/google/uuid"
)

// A reference to a texture image. Textures are identified either by the
// source they were loaded from or, if Source is empty, by the contents of
// the already decoded Image.
type TextureRef struct {
	// Path or URL to the texture. Relative paths are resolved against the
	// scene asset path.
	Source string

	// An already decoded image. If set, Source is ignored when loading.
	Image image.Image
}

// A surface material. Texture slots are optional and set to nil when absent.
type Material struct {
	Name string

	Albedo            types.Vec3
	Emissive          types.Vec3
	EmissiveIntensity float32
	Metallic          float32
	Roughness         float32
	Opacity           float32
	Transmission      float32

	// Index of refraction; 0 selects the default value of 1.
	IOR float32

	AlbedoMap    *TextureRef
	RoughnessMap *TextureRef
	MetalnessMap *TextureRef
	NormalMap    *TextureRef
	EmissiveMap  *TextureRef
}

// Create a new material with default settings (white, rough, opaque dielectric).
func NewMaterial(name string) *Material {
	return &Material{
		Name:              name,
		Albedo:            types.Vec3{1, 1, 1},
		EmissiveIntensity: 1,
		Roughness:         1,
		Opacity:           1,
		IOR:               1,
	}
}

// A group assigns a material to a contiguous range of a mesh's index list.
type Group struct {
	// First index (not triangle) covered by the group.
	Start int

	// Number of indices covered by the group. The compiler rejects groups
	// whose count is not a multiple of 3.
	Count int

	// Index into the owning mesh material list.
	MaterialIndex int
}

// A triangle mesh. Normals, UVs, tangents and indices are optional; missing
// attributes are synthesized by the scene compiler.
type Mesh struct {
	Name string

	// Object to world transformation.
	Transform types.Mat4

	Positions []types.Vec3
	Normals   []types.Vec3
	UVs       []types.Vec2
	Tangents  []types.Vec3
	Indices   []uint32

	Groups    []Group
	Materials []*Material
}

// Create a new mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Transform: types.Ident4(),
	}
}

// Returns true if the mesh uses an index list.
func (m *Mesh) IsIndexed() bool {
	return len(m.Indices) != 0
}

// Get the number of triangles described by this mesh.
func (m *Mesh) TriangleCount() int {
	if m.IsIndexed() {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Initial camera settings.
type Camera struct {
	// Orbit parameters in degrees.
	Polar     float32
	Azimuthal float32
	Radial    float32
	LookAt    types.Vec3

	// Vertical field of view in degrees.
	FOV           float32
	FocusDistance float32
	DefocusAngle  float32
}

// Scene background settings.
type Environment struct {
	Color     types.Vec3
	Intensity float32

	// An optional equirectangular environment map.
	Map *TextureRef
}

// The scene contains all elements that are processed and packed by the scene compiler.
type Scene struct {
	// A unique scene identifier used as the scene cache key.
	ID string

	Meshes      []*Mesh
	Camera      Camera
	Environment Environment

	// Base path used for resolving relative texture sources.
	AssetPath string
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		ID:     uuid.New().String(),
		Meshes: make([]*Mesh, 0),
		Camera: Camera{
			Polar:         90,
			Azimuthal:     0,
			Radial:        5,
			FOV:           45,
			FocusDistance: 5,
		},
		Environment: Environment{
			Color:     types.Vec3{1, 1, 1},
			Intensity: 1,
		},
	}
}
