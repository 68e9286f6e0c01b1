package bvh

import (
	"math"

	"github.com/achilleasa/polaris-viewer/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// Boxes thinner than 2*PadEpsilon along an axis are widened by PadEpsilon on
// both sides so rays never hit a zero-thickness slab.
const PadEpsilon float32 = 1e-4

// A closed scalar range along one axis.
type Interval struct {
	Min, Max float32
}

// Get the interval extent.
func (i Interval) Size() float32 {
	return i.Max - i.Min
}

// Get the smallest interval containing both i and other.
func (i Interval) Union(other Interval) Interval {
	return Interval{
		Min: float32(math.Min(float64(i.Min), float64(other.Min))),
		Max: float32(math.Max(float64(i.Max), float64(other.Max))),
	}
}

// Grow the interval by delta on both sides.
func (i Interval) Expand(delta float32) Interval {
	return Interval{Min: i.Min - delta, Max: i.Max + delta}
}

// An axis aligned bounding box.
type AABB struct {
	Axes [3]Interval
}

// Create an AABB enclosing two points. The resulting box is padded.
func NewAABB(a, b types.Vec3) AABB {
	var box AABB
	for axis := XAxis; axis <= ZAxis; axis++ {
		box.Axes[axis] = Interval{
			Min: float32(math.Min(float64(a[axis]), float64(b[axis]))),
			Max: float32(math.Max(float64(a[axis]), float64(b[axis]))),
		}
	}
	return box.pad()
}

// Create an AABB enclosing a triangle.
func FromTriangle(p0, p1, p2 types.Vec3) AABB {
	return NewAABB(
		types.MinVec3(p0, types.MinVec3(p1, p2)),
		types.MaxVec3(p0, types.MaxVec3(p1, p2)),
	)
}

// Get the smallest padded AABB containing both a and b.
func Merge(a, b AABB) AABB {
	var box AABB
	for axis := XAxis; axis <= ZAxis; axis++ {
		box.Axes[axis] = a.Axes[axis].Union(b.Axes[axis])
	}
	return box.pad()
}

// Get the min corner.
func (b AABB) Min() types.Vec3 {
	return types.Vec3{b.Axes[XAxis].Min, b.Axes[YAxis].Min, b.Axes[ZAxis].Min}
}

// Get the max corner.
func (b AABB) Max() types.Vec3 {
	return types.Vec3{b.Axes[XAxis].Max, b.Axes[YAxis].Max, b.Axes[ZAxis].Max}
}

// Get the axis with the largest extent. Ties resolve to the first axis in
// x, y, z order.
func (b AABB) LongestAxis() Axis {
	longest := XAxis
	for axis := YAxis; axis <= ZAxis; axis++ {
		if b.Axes[axis].Size() > b.Axes[longest].Size() {
			longest = axis
		}
	}
	return longest
}

// Returns true if box contains other.
func (b AABB) Contains(other AABB) bool {
	for axis := XAxis; axis <= ZAxis; axis++ {
		if other.Axes[axis].Min < b.Axes[axis].Min || other.Axes[axis].Max > b.Axes[axis].Max {
			return false
		}
	}
	return true
}

func (b AABB) pad() AABB {
	for axis := XAxis; axis <= ZAxis; axis++ {
		if b.Axes[axis].Size() < 2*PadEpsilon {
			b.Axes[axis] = b.Axes[axis].Expand(PadEpsilon)
		}
	}
	return b
}
