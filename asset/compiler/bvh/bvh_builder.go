package bvh

import (
	"sort"
	"time"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/log"
)

// A reference to a primitive that the BVH builder partitions.
type PrimitiveRef struct {
	// Index of the triangle in the packed scene.
	Index int32

	// Index of the material row assigned to the triangle.
	Material int32

	BBox AABB
}

type stats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list. Nodes never move once appended.
	nodes []scene.BvhNode

	stats stats
}

// Construct a BVH from a set of primitive references using a median split
// along the longest axis of each partition.
//
// Children of internal nodes are always stored as adjacent pairs; the right
// child of a node lives at Left+1. Partitions with a single primitive emit
// the primitive leaf twice to keep the pair layout uniform. The root is a
// wrapper node appended last; its Left index points to the top level pair.
//
// The supplied refs slice is not modified.
func Build(refs []PrimitiveRef) ([]scene.BvhNode, error) {
	if len(refs) == 0 {
		return nil, ErrNoPrimitives
	}

	b := &builder{
		logger: log.New("bvh builder"),
		nodes:  make([]scene.BvhNode, 0, 2*len(refs)),
	}

	workList := make([]PrimitiveRef, len(refs))
	copy(workList, refs)

	start := time.Now()
	left, bbox := b.partition(workList, 0)
	b.appendNode(left, -1, bbox)
	b.logger.Debugf(
		"BVH tree build time: %d ms, primitives: %d, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		len(refs), b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)

	return b.nodes, nil
}

// Partition the work list and return the index of the first node of the
// emitted child pair together with the pair's merged AABB.
func (b *builder) partition(workList []PrimitiveRef, depth int) (int32, AABB) {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	switch len(workList) {
	case 1:
		first := b.appendLeaf(workList[0])
		b.appendLeaf(workList[0])
		return first, workList[0].BBox
	case 2:
		first := b.appendLeaf(workList[0])
		b.appendLeaf(workList[1])
		return first, Merge(workList[0].BBox, workList[1].BBox)
	}

	bbox := workList[0].BBox
	for _, ref := range workList[1:] {
		bbox = Merge(bbox, ref.BBox)
	}

	axis := bbox.LongestAxis()
	sort.SliceStable(workList, func(i, j int) bool {
		return workList[i].BBox.Axes[axis].Min < workList[j].BBox.Axes[axis].Min
	})

	mid := (len(workList) + 1) / 2
	leftIndex, leftBox := b.partition(workList[:mid], depth+1)
	rightIndex, rightBox := b.partition(workList[mid:], depth+1)

	first := b.appendNode(leftIndex, -1, leftBox)
	b.appendNode(rightIndex, -1, rightBox)

	return first, Merge(leftBox, rightBox)
}

// Append a leaf node. Leafs encode the primitive index as -(index)-1.
func (b *builder) appendLeaf(ref PrimitiveRef) int32 {
	b.stats.leafs++
	return b.appendNode(-ref.Index-1, ref.Material, ref.BBox)
}

func (b *builder) appendNode(left, material int32, bbox AABB) int32 {
	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, scene.BvhNode{
		Min:      bbox.Min(),
		Left:     left,
		Max:      bbox.Max(),
		Material: material,
	})
	b.stats.nodes++
	return nodeIndex
}
