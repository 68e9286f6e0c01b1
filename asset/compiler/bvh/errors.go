package bvh

import "errors"

var (
	ErrNoPrimitives = errors.New("bvh: cannot build a BVH over an empty primitive list")
)
