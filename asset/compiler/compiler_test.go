package compiler

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmptyScene(t *testing.T) {
	sc, err := Compile(context.Background(), input.NewScene(), DefaultOptions())
	require.NoError(t, err)

	if !sc.IsEmpty() {
		t.Fatal("expected compiled scene to be empty")
	}
	if sc.Bvh.Count != 0 || sc.BvhLength != 0 {
		t.Fatalf("expected empty bvh; got %d nodes", sc.Bvh.Count)
	}
	if len(sc.Positions.Data) != 0 || sc.Positions.Width != 0 {
		t.Fatalf("expected empty position buffer; got %dx%d", sc.Positions.Width, sc.Positions.Height)
	}
}

func TestSharedTextureUsesSingleSlot(t *testing.T) {
	in := input.NewScene()
	for index := 0; index < 2; index++ {
		mat := input.NewMaterial("mat")
		// Distinct image instances with identical contents
		mat.AlbedoMap = &input.TextureRef{Image: checkerImage()}

		mesh := triangleMesh("mesh")
		mesh.Materials = []*input.Material{mat}
		in.Meshes = append(in.Meshes, mesh)
	}

	sc, err := Compile(context.Background(), in, DefaultOptions())
	require.NoError(t, err)

	if sc.Atlas.Layers != 1 {
		t.Fatalf("expected atlas to contain 1 layer; got %d", sc.Atlas.Layers)
	}

	for matIndex := 0; matIndex < 2; matIndex++ {
		if got := sc.Materials.At(matIndex)[0]; got != 0 {
			t.Fatalf("expected material %d albedo texture slot to be 0; got %f", matIndex, got)
		}
		if got := sc.Materials.At(matIndex)[1]; got != -1 {
			t.Fatalf("expected material %d roughness texture slot to be -1; got %f", matIndex, got)
		}
	}
}

func TestSharedTextureSourceUsesSingleSlot(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tex.png"), checkerImage())
	writePNG(t, filepath.Join(dir, "other.png"), image.NewRGBA(image.Rect(0, 0, 4, 2)))

	in := input.NewScene()
	in.AssetPath = filepath.Join(dir, "scene.zip")
	sources := [][]string{
		{"tex.png", "other.png"},
		{"./tex.png", "missing.png"},
	}
	for _, srcs := range sources {
		mat := input.NewMaterial("mat")
		mat.AlbedoMap = &input.TextureRef{Source: srcs[0]}
		mat.NormalMap = &input.TextureRef{Source: srcs[1]}

		mesh := triangleMesh("mesh")
		mesh.Materials = []*input.Material{mat}
		in.Meshes = append(in.Meshes, mesh)
	}

	opts := DefaultOptions()
	opts.FlipTexturesY = false
	sc, err := Compile(context.Background(), in, opts)
	require.NoError(t, err)

	if sc.Atlas.Layers != 2 {
		t.Fatalf("expected atlas to contain 2 layers; got %d", sc.Atlas.Layers)
	}
	if sc.Atlas.Width != 4 || sc.Atlas.Height != 4 {
		t.Fatalf("expected atlas layer dims to be 4x4; got %dx%d", sc.Atlas.Width, sc.Atlas.Height)
	}

	assert.Equal(t, []float32{0, -1, -1, 1}, sc.Materials.At(0)[:4])
	// Missing textures are skipped
	assert.Equal(t, []float32{0, -1, -1, -1}, sc.Materials.At(1)[:4])

	// Unflipped layer 0 must match the source image
	assert.Equal(t, checkerImage().(*image.RGBA).Pix, sc.Atlas.Layer(0))
}

func TestIndexRebasing(t *testing.T) {
	in := input.NewScene()

	indexed := triangleMesh("indexed")
	in.Meshes = append(in.Meshes, indexed)

	nonIndexed := input.NewMesh("non-indexed")
	nonIndexed.Positions = []types.Vec3{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}}
	nonIndexed.UVs = []types.Vec2{{0, 0}, {1, 0}, {0, 1}}
	in.Meshes = append(in.Meshes, nonIndexed)

	sc, err := Compile(context.Background(), in, DefaultOptions())
	require.NoError(t, err)

	if sc.NumTriangles != 2 {
		t.Fatalf("expected 2 triangles; got %d", sc.NumTriangles)
	}

	expRecords := [][]float32{
		{0, -1, 0, -1},
		{1, -1, 1, -1},
		{2, -1, 2, -1},
		{3, 0, 3, 0},
		{4, 1, 4, 1},
		{5, 2, 5, 2},
	}
	for index, exp := range expRecords {
		assert.Equal(t, exp, sc.Indices.At(index), "index record %d", index)
	}

	// Each mesh gets its own default material
	assert.Equal(t, 2, sc.Materials.Count)
	assert.Equal(t, []float32{0}, sc.MaterialIndices.At(0))
	assert.Equal(t, []float32{1}, sc.MaterialIndices.At(1))

	// Every non-negative record component is a valid offset
	for index := 0; index < sc.Indices.Count; index++ {
		rec := sc.Indices.At(index)
		limits := []int{sc.Positions.Count, sc.UVs.Count, sc.Normals.Count, sc.Tangents.Count}
		for c, v := range rec {
			if int(v) >= limits[c] {
				t.Fatalf("index record %d component %d (%f) out of range (%d)", index, c, v, limits[c])
			}
		}
	}
}

func TestDefaultMaterial(t *testing.T) {
	in := input.NewScene()
	in.Meshes = append(in.Meshes, triangleMesh("mesh"))

	sc, err := Compile(context.Background(), in, DefaultOptions())
	require.NoError(t, err)

	row := scene.DefaultMaterial().Row()
	assert.Equal(t, row[:], sc.Materials.At(0))
}

func TestUndeclaredMaterial(t *testing.T) {
	mesh := triangleMesh("mesh")
	mesh.Materials = []*input.Material{input.NewMaterial("only")}
	mesh.Groups = []input.Group{{Start: 0, Count: 3, MaterialIndex: 2}}

	in := input.NewScene()
	in.Meshes = append(in.Meshes, mesh)

	_, err := Compile(context.Background(), in, DefaultOptions())
	if !errors.Is(err, ErrUndeclaredMaterial) {
		t.Fatalf("expected to get ErrUndeclaredMaterial; got %v", err)
	}
}

func TestInvalidGeometry(t *testing.T) {
	type spec struct {
		mutate func(*input.Mesh)
		expErr error
	}

	specs := []spec{
		{func(m *input.Mesh) { m.Positions[1][0] = float32(math.NaN()) }, ErrNonFiniteGeometry},
		{func(m *input.Mesh) { m.Indices[2] = 7 }, ErrIndexOutOfRange},
		{func(m *input.Mesh) { m.Groups = []input.Group{{Start: 3, Count: 3}} }, ErrInvalidGroup},
		{func(m *input.Mesh) { m.Groups = []input.Group{{Start: 0, Count: 2}} }, ErrInvalidGroup},
		{func(m *input.Mesh) { m.Groups = []input.Group{{Start: 0, Count: -3}} }, ErrInvalidGroup},
	}

	for index, s := range specs {
		mesh := triangleMesh("mesh")
		s.mutate(mesh)

		in := input.NewScene()
		in.Meshes = append(in.Meshes, mesh)
		_, err := Compile(context.Background(), in, DefaultOptions())
		if !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected to get %v; got %v", index, s.expErr, err)
		}
	}
}

func TestMaterialConversion(t *testing.T) {
	glass := input.NewMaterial("glass")
	glass.Transmission = 0.8
	glass.IOR = 1.5

	translucent := input.NewMaterial("translucent")
	translucent.Opacity = 0.5
	translucent.Transmission = 0.8
	translucent.IOR = 0
	translucent.Emissive = types.Vec3{1, 0.5, 0}
	translucent.EmissiveIntensity = 4

	mesh := triangleMesh("mesh")
	mesh.Materials = []*input.Material{glass, translucent}
	mesh.Groups = []input.Group{{Start: 0, Count: 3, MaterialIndex: 1}}

	in := input.NewScene()
	in.Meshes = append(in.Meshes, mesh)
	sc, err := Compile(context.Background(), in, DefaultOptions())
	require.NoError(t, err)

	glassRow := sc.Materials.At(0)
	assert.InDelta(t, 0.2, glassRow[13], 1e-6)
	assert.InDelta(t, 1.5, glassRow[14], 1e-6)

	translucentRow := sc.Materials.At(1)
	assert.InDelta(t, 0.5, translucentRow[13], 1e-6)
	assert.InDelta(t, 1.0, translucentRow[14], 1e-6)
	assert.Equal(t, []float32{4, 2, 0}, translucentRow[8:11])

	assert.Equal(t, []float32{1}, sc.MaterialIndices.At(0))
}

func TestAttributeSynthesis(t *testing.T) {
	mesh := triangleMesh("mesh")
	mesh.UVs = []types.Vec2{{0, 0}, {1, 0}, {0, 1}}
	mesh.Transform = types.Translate4(types.Vec3{0, 0, 5})

	in := input.NewScene()
	in.Meshes = append(in.Meshes, mesh)
	sc, err := Compile(context.Background(), in, DefaultOptions())
	require.NoError(t, err)

	for index := 0; index < 3; index++ {
		assertVec3(t, vec3(sc.Normals.At(index)), types.Vec3{0, 0, 1})
		assertVec3(t, vec3(sc.Tangents.At(index)), types.Vec3{1, 0, 0})
	}
	assertVec3(t, vec3(sc.Positions.At(1)), types.Vec3{1, 0, 5})

	// Input mesh must not be modified
	assertVec3(t, mesh.Positions[1], types.Vec3{1, 0, 0})
	if mesh.Normals != nil || mesh.Tangents != nil {
		t.Fatal("expected input mesh attributes to remain unset")
	}
}

func TestNormalTransforms(t *testing.T) {
	invSqrt2 := float32(1 / math.Sqrt(2))
	invSqrt5 := float32(1 / math.Sqrt(5))

	type spec struct {
		positions []types.Vec3
		normal    types.Vec3
		transform types.Mat4
		expNormal types.Vec3
		expPos    types.Vec3
	}

	specs := []spec{
		// Non-uniform scale requires the inverse transpose; (2,1,0) would be
		// the result of transforming the normal as a direction.
		{
			positions: []types.Vec3{{0, 0, 0}, {1, -1, 0}, {0, 0, 1}},
			normal:    types.Vec3{invSqrt2, invSqrt2, 0},
			transform: types.Scale4(types.Vec3{2, 1, 1}),
			expNormal: types.Vec3{invSqrt5, 2 * invSqrt5, 0},
			expPos:    types.Vec3{2, -1, 0},
		},
		{
			positions: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			normal:    types.Vec3{0, 0, 1},
			transform: types.Rotate4(types.Vec3{1, 0, 0}, 90),
			expNormal: types.Vec3{0, -1, 0},
			expPos:    types.Vec3{1, 0, 0},
		},
		{
			positions: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			normal:    types.Vec3{0, 0, 1},
			transform: types.Translate4(types.Vec3{0, 0, 3}).Mul4(types.Scale4(types.Vec3{1, 1, 4})),
			expNormal: types.Vec3{0, 0, 1},
			expPos:    types.Vec3{1, 0, 3},
		},
	}

	for index, s := range specs {
		mesh := input.NewMesh("mesh")
		mesh.Positions = s.positions
		mesh.Normals = []types.Vec3{s.normal, s.normal, s.normal}
		mesh.Indices = []uint32{0, 1, 2}
		mesh.Transform = s.transform

		in := input.NewScene()
		in.Meshes = append(in.Meshes, mesh)
		sc, err := Compile(context.Background(), in, DefaultOptions())
		require.NoError(t, err, "spec %d", index)

		for vertex := 0; vertex < 3; vertex++ {
			got := vec3(sc.Normals.At(vertex))
			if !assert.InDelta(t, 1, got.Len(), 1e-5) {
				t.Fatalf("[spec %d] expected unit normal; got %v", index, got)
			}
			assertVec3(t, got, s.expNormal)
		}
		assertVec3(t, vec3(sc.Positions.At(1)), s.expPos)

		// Input normals must not be modified
		assertVec3(t, mesh.Normals[0], s.normal)
	}
}

func TestCompileBuildsBvh(t *testing.T) {
	in := input.NewScene()
	for index := 0; index < 4; index++ {
		mesh := triangleMesh("mesh")
		mesh.Transform = types.Translate4(types.Vec3{float32(index) * 2, 0, 0})
		in.Meshes = append(in.Meshes, mesh)
	}

	sc, err := Compile(context.Background(), in, DefaultOptions())
	require.NoError(t, err)

	if sc.BvhLength != 7 {
		t.Fatalf("expected bvh to contain 7 nodes; got %d", sc.BvhLength)
	}

	root := scene.UnpackBvhNode(sc.Bvh, sc.BvhLength-1)
	assert.Equal(t, int32(-1), root.Material)
	assert.InDelta(t, 0, root.Min[0], 1e-6)
	assert.InDelta(t, 7, root.Max[0], 1e-6)
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := input.NewScene()
	in.Meshes = append(in.Meshes, triangleMesh("mesh"))
	_, err := Compile(ctx, in, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected to get context.Canceled; got %v", err)
	}
}

func TestCache(t *testing.T) {
	in := input.NewScene()
	in.Meshes = append(in.Meshes, triangleMesh("mesh"))

	cache := NewCache(DefaultOptions())
	sc1, err := cache.Get(context.Background(), in)
	require.NoError(t, err)
	sc2, err := cache.Get(context.Background(), in)
	require.NoError(t, err)

	if sc1 != sc2 {
		t.Fatal("expected cache hit to return the previously compiled scene")
	}

	cache.Invalidate(in.ID)
	if cache.Len() != 0 {
		t.Fatalf("expected cache to be empty after invalidation; got %d entries", cache.Len())
	}

	sc3, err := cache.Get(context.Background(), in)
	require.NoError(t, err)
	if sc3 == sc1 {
		t.Fatal("expected scene to be recompiled after invalidation")
	}
}

func triangleMesh(name string) *input.Mesh {
	mesh := input.NewMesh(name)
	mesh.Positions = []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	mesh.Indices = []uint32{0, 1, 2}
	return mesh
}

func checkerImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func vec3(v []float32) types.Vec3 {
	return types.Vec3{v[0], v[1], v[2]}
}

func assertVec3(t *testing.T, got, exp types.Vec3) {
	t.Helper()
	for axis := 0; axis < 3; axis++ {
		assert.InDelta(t, exp[axis], got[axis], 1e-5, "axis %d of %v", axis, got)
	}
}
