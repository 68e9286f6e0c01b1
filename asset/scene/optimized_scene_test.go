package scene

import (
	"strings"
	"testing"

	"github.com/achilleasa/polaris-viewer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBvh(t *testing.T) {
	nodes := []BvhNode{
		{Min: types.Vec3{0, 1, 2}, Left: -1, Max: types.Vec3{3, 4, 5}, Material: 7},
		{Min: types.Vec3{-1, -1, -1}, Left: -2, Max: types.Vec3{1, 1, 1}, Material: 0},
		{Min: types.Vec3{-1, -1, -1}, Left: 0, Max: types.Vec3{5, 5, 5}, Material: -1},
	}

	tb, err := PackBvh(nodes, 4)
	require.NoError(t, err)

	if tb.Width != 4 || tb.Height != 2 {
		t.Fatalf("expected bvh buffer dims to be 4x2; got %dx%d", tb.Width, tb.Height)
	}

	assert.Equal(t, []float32{-1, 7, 0, 1, 2, 3, 4, 5}, tb.At(0))
	for index, exp := range nodes {
		assert.Equal(t, exp, UnpackBvhNode(tb, index))
	}

	if !nodes[0].IsLeaf() || nodes[0].PrimitiveIndex() != 0 {
		t.Fatal("expected node 0 to be a leaf for primitive 0")
	}
	if nodes[2].IsLeaf() {
		t.Fatal("expected node 2 to be an internal node")
	}
}

func TestPackMaterials(t *testing.T) {
	mat := DefaultMaterial()
	mat.AlbedoTexture = 2
	mat.Emissive = types.Vec3{4, 5, 6}
	mat.Metallic = 0.5
	mat.IOR = 1.5

	tb, err := PackMaterials([]Material{DefaultMaterial(), mat}, 16)
	require.NoError(t, err)

	assert.Equal(t, []float32{
		2, -1, -1, -1,
		-1, 1, 1, 1,
		4, 5, 6, 0.5,
		1, 1, 1.5, 0,
	}, tb.At(1))
}

func TestSceneStats(t *testing.T) {
	positions, err := NewTextureBuffer("positions", 3, 1, 3, 16)
	require.NoError(t, err)

	sc := &Scene{
		Positions:    positions,
		NumTriangles: 1,
		Atlas:        Atlas{Width: 2, Height: 2, Layers: 1, Data: make([]byte, 16)},
	}

	stats := sc.Stats()
	for _, exp := range []string{"positions", "3x1", "1 tris", "Total"} {
		if !strings.Contains(stats, exp) {
			t.Fatalf("expected stats table to contain %q; got:\n%s", exp, stats)
		}
	}

	expSize := 3*3*4 + 16
	if sc.SizeInBytes() != expSize {
		t.Fatalf("expected scene size to be %d; got %d", expSize, sc.SizeInBytes())
	}

	if sc.IsEmpty() {
		t.Fatal("expected scene with triangles not to be empty")
	}
}

func TestAtlasLayer(t *testing.T) {
	atlas := Atlas{Width: 1, Height: 1, Layers: 2, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	assert.Equal(t, []byte{5, 6, 7, 8}, atlas.Layer(1))
}
