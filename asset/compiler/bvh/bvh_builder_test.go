package bvh

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil)
	if err != ErrNoPrimitives {
		t.Fatalf("expected to get ErrNoPrimitives; got %v", err)
	}
}

func TestMedianSplit(t *testing.T) {
	// Combined extent is largest along X. The left group of 3 is tallest
	// along Y so the builder must re-evaluate the split axis for it.
	refs := []PrimitiveRef{
		tri(0, 0, 0, 10),
		tri(1, 1, 10, 11),
		tri(2, 2, 5, 12),
		tri(3, 20, 0, 13),
		tri(4, 30, 0, 14),
	}

	nodes, err := Build(refs)
	require.NoError(t, err)

	type spec struct {
		left     int32
		material int32
	}
	expNodes := []spec{
		{-1, 10}, // prim 0 (lowest y)
		{-3, 12}, // prim 2
		{-2, 11}, // prim 1 (singleton group, emitted twice)
		{-2, 11},
		{0, -1}, // left pair of the 3-group
		{2, -1}, // right pair of the 3-group
		{-4, 13},
		{-5, 14},
		{4, -1},
		{6, -1},
		{8, -1}, // root wrapper
	}

	if len(nodes) != len(expNodes) {
		t.Fatalf("expected %d nodes; got %d", len(expNodes), len(nodes))
	}
	for index, exp := range expNodes {
		if nodes[index].Left != exp.left || nodes[index].Material != exp.material {
			t.Fatalf("[node %d] expected (left, material) to be (%d, %d); got (%d, %d)", index, exp.left, exp.material, nodes[index].Left, nodes[index].Material)
		}
	}

	// Input refs must not be reordered
	for index, ref := range refs {
		if ref.Index != int32(index) {
			t.Fatalf("expected input ref %d to keep its position; got index %d", index, ref.Index)
		}
	}
}

func TestStableSortTies(t *testing.T) {
	// All prims share the same min x; the input order must be preserved.
	refs := []PrimitiveRef{
		tri(0, 0, 0, 0),
		tri(1, 0, 0, 1),
		tri(2, 0, 0, 2),
		tri(3, 0, 0, 3),
	}
	for index := range refs {
		refs[index].BBox.Axes[XAxis].Max = 100
	}

	nodes, err := Build(refs)
	require.NoError(t, err)

	expLeafs := []int32{-1, -2, -3, -4}
	gotLeafs := []int32{nodes[0].Left, nodes[1].Left, nodes[2].Left, nodes[3].Left}
	assert.Equal(t, expLeafs, gotLeafs)
}

func TestNodeCount(t *testing.T) {
	type spec struct {
		prims    int
		expNodes int
	}

	specs := []spec{
		{1, 3},
		{2, 3},
		{3, 7},
		{4, 7},
		{5, 11},
		{6, 15},
		{7, 15},
		{8, 15},
		{16, 31},
		{64, 127},
	}

	for _, s := range specs {
		nodes, err := Build(randomRefs(s.prims, int64(s.prims)))
		require.NoError(t, err)

		if len(nodes) != s.expNodes {
			t.Fatalf("[%d prims] expected bvh tree to have %d nodes; got %d", s.prims, s.expNodes, len(nodes))
		}
	}
}

func TestCoverage(t *testing.T) {
	for _, primCount := range []int{1, 2, 3, 17, 100, 257} {
		refs := randomRefs(primCount, 42)
		nodes, err := Build(refs)
		require.NoError(t, err)

		root := nodes[len(nodes)-1]
		if root.Material != -1 {
			t.Fatalf("expected root material to be -1; got %d", root.Material)
		}

		seen := make(map[int32]bool)
		var leafMin, leafMax types.Vec3
		first := true

		var visit func(nodeIndex int32, parent scene.BvhNode)
		visit = func(nodeIndex int32, parent scene.BvhNode) {
			node := nodes[nodeIndex]
			assertContains(t, parent, node)

			if node.IsLeaf() {
				seen[node.PrimitiveIndex()] = true
				if first {
					leafMin, leafMax = node.Min, node.Max
					first = false
				} else {
					leafMin = types.MinVec3(leafMin, node.Min)
					leafMax = types.MaxVec3(leafMax, node.Max)
				}
				return
			}

			visit(node.Left, node)
			visit(node.Left+1, node)
		}
		visit(root.Left, root)
		visit(root.Left+1, root)

		if len(seen) != primCount {
			t.Fatalf("[%d prims] expected every primitive to be reachable; reached %d", primCount, len(seen))
		}

		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, root.Min[axis], leafMin[axis], float64(2*PadEpsilon))
			assert.InDelta(t, root.Max[axis], leafMax[axis], float64(2*PadEpsilon))
		}
	}
}

func assertContains(t *testing.T, parent, child scene.BvhNode) {
	for axis := 0; axis < 3; axis++ {
		if child.Min[axis] < parent.Min[axis] || child.Max[axis] > parent.Max[axis] {
			t.Fatalf("expected node bbox [%v, %v] to be contained in parent bbox [%v, %v]", child.Min, child.Max, parent.Min, parent.Max)
		}
	}
}

func tri(index int32, x, y float32, material int32) PrimitiveRef {
	return PrimitiveRef{
		Index:    index,
		Material: material,
		BBox: FromTriangle(
			types.Vec3{x, y, 0},
			types.Vec3{x + 1, y, 0},
			types.Vec3{x, y + 1, 0},
		),
	}
}

func randomRefs(count int, seed int64) []PrimitiveRef {
	rng := rand.New(rand.NewSource(seed))
	rnd := func() types.Vec3 {
		return types.Vec3{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}
	}

	refs := make([]PrimitiveRef, count)
	for index := range refs {
		p0 := rnd()
		refs[index] = PrimitiveRef{
			Index:    int32(index),
			Material: int32(index % 3),
			BBox:     FromTriangle(p0, p0.Add(rnd().Mul(0.1)), p0.Add(rnd().Mul(0.1))),
		}
	}
	return refs
}
