package scene

import "github.com/achilleasa/polaris-viewer/types"

// Number of RGBA texels used by a packed BVH node.
const BvhNodeTexels = 2

// A BVH node stored in a flat node arena.
//
// - For leafs, Left is negative and encodes the primitive index as
// -(index)-1 while Material holds the primitive material index.
// - For internal nodes, Left points to the first of two adjacent children
// (the second is stored at Left+1) and Material is -1.
//
// The root node is always the last node in the arena.
type BvhNode struct {
	Min  types.Vec3
	Left int32

	Max      types.Vec3
	Material int32
}

// Returns true if this is a leaf node.
func (n BvhNode) IsLeaf() bool {
	return n.Left < 0
}

// Get the primitive index for a leaf node.
func (n BvhNode) PrimitiveIndex() int32 {
	return -n.Left - 1
}

// Pack bvh nodes into a RGBA texture buffer using the layout:
// [left, material, min.x, min.y] [min.z, max.x, max.y, max.z]
func PackBvh(nodes []BvhNode, maxRowLength int) (*TextureBuffer, error) {
	tb, err := NewTextureBuffer("bvh", len(nodes), BvhNodeTexels, 4, maxRowLength)
	if err != nil {
		return nil, err
	}

	for _, node := range nodes {
		err = tb.Write(
			float32(node.Left), float32(node.Material), node.Min[0], node.Min[1],
			node.Min[2], node.Max[0], node.Max[1], node.Max[2],
		)
		if err != nil {
			return nil, err
		}
	}

	return tb, nil
}

// Unpack a bvh node from a packed buffer.
func UnpackBvhNode(tb *TextureBuffer, index int) BvhNode {
	v := tb.At(index)
	return BvhNode{
		Left:     int32(v[0]),
		Material: int32(v[1]),
		Min:      types.Vec3{v[2], v[3], v[4]},
		Max:      types.Vec3{v[5], v[6], v[7]},
	}
}
