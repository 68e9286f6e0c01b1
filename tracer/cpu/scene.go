package cpu

import (
	"math"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/types"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	intersectEpsilon float32 = 1e-6
	maxTraversalDepth        = 128
)

// A ray with a normalized direction.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// Get the point along the ray at distance t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// A ray-triangle intersection.
type Hit struct {
	T        float32
	Prim     int32
	Material int32
	Point    types.Vec3

	// Interpolated shading normal facing the ray origin.
	Normal types.Vec3
}

// A read-only view over the packed scene buffers. Buffers are unpacked once
// so rays can be traced without decoding texels.
type SceneView struct {
	nodes      []scene.BvhNode
	positions  []types.Vec3
	normals    []types.Vec3
	indices    [][4]int32
	matIndices []int32
	materials  []scene.Material

	Environment scene.Environment
}

// Unpack the buffers of a packed scene.
func NewSceneView(sc *scene.Scene) *SceneView {
	sv := &SceneView{
		nodes:       make([]scene.BvhNode, sc.BvhLength),
		positions:   unpackVec3(sc.Positions),
		normals:     unpackVec3(sc.Normals),
		indices:     make([][4]int32, sc.Indices.Count),
		matIndices:  make([]int32, sc.MaterialIndices.Count),
		materials:   make([]scene.Material, sc.Materials.Count),
		Environment: sc.Environment,
	}

	for index := range sv.nodes {
		sv.nodes[index] = scene.UnpackBvhNode(sc.Bvh, index)
	}
	for index := range sv.indices {
		rec := sc.Indices.At(index)
		sv.indices[index] = [4]int32{int32(rec[0]), int32(rec[1]), int32(rec[2]), int32(rec[3])}
	}
	for index := range sv.matIndices {
		sv.matIndices[index] = int32(sc.MaterialIndices.At(index)[0])
	}
	for index := range sv.materials {
		row := sc.Materials.At(index)
		sv.materials[index] = scene.Material{
			AlbedoTexture:    int32(row[0]),
			RoughnessTexture: int32(row[1]),
			MetalnessTexture: int32(row[2]),
			NormalTexture:    int32(row[3]),
			EmissiveTexture:  int32(row[4]),
			Albedo:           types.Vec3{row[5], row[6], row[7]},
			Emissive:         types.Vec3{row[8], row[9], row[10]},
			Metallic:         row[11],
			Roughness:        row[12],
			Opacity:          row[13],
			IOR:              row[14],
		}
	}

	return sv
}

// Get a material by index.
func (sv *SceneView) Material(index int32) scene.Material {
	return sv.materials[index]
}

// Get the background radiance for a ray direction.
func (sv *SceneView) Background(dir types.Vec3) types.Vec3 {
	env := sv.Environment
	if env.Map == nil || env.Map.Width == 0 || env.Map.Height == 0 {
		return env.Color.Mul(env.Intensity)
	}

	// Equirectangular lookup; map rows are stored bottom-first.
	u := 0.5 + math.Atan2(float64(dir[0]), float64(-dir[2]))/(2*math.Pi)
	v := 0.5 + math.Asin(float64(mgl32.Clamp(dir[1], -1, 1)))/math.Pi
	x := int(u*float64(env.Map.Width)) % int(env.Map.Width)
	y := int(v * float64(env.Map.Height-1))
	offset := 4 * (y*int(env.Map.Width) + x)
	return types.Vec3{env.Map.Data[offset], env.Map.Data[offset+1], env.Map.Data[offset+2]}.Mul(env.Intensity)
}

// Find the closest intersection between ray and the scene geometry by
// traversing the BVH.
func (sv *SceneView) Intersect(ray Ray) (Hit, bool) {
	var hit Hit
	if len(sv.nodes) == 0 {
		return hit, false
	}

	invDir := types.Vec3{1 / ray.Dir[0], 1 / ray.Dir[1], 1 / ray.Dir[2]}
	closest := float32(math.MaxFloat32)
	found := false

	var stack [maxTraversalDepth]int32
	root := sv.nodes[len(sv.nodes)-1]
	stack[0], stack[1] = root.Left, root.Left+1
	top := 2

	for top > 0 {
		top--
		node := sv.nodes[stack[top]]
		if !slabTest(node.Min, node.Max, ray.Origin, invDir, closest) {
			continue
		}

		if node.IsLeaf() {
			prim := node.PrimitiveIndex()
			if t, b1, b2, ok := sv.intersectTriangle(prim, ray, closest); ok {
				closest = t
				found = true
				hit = Hit{T: t, Prim: prim, Material: node.Material}
				hit.Normal = sv.shadingNormal(prim, b1, b2)
			}
			continue
		}

		if top+2 > len(stack) {
			continue
		}
		stack[top], stack[top+1] = node.Left, node.Left+1
		top += 2
	}

	if !found {
		return hit, false
	}

	hit.Point = ray.At(hit.T)
	if hit.Normal.Dot(ray.Dir) > 0 {
		hit.Normal = hit.Normal.Mul(-1)
	}
	return hit, true
}

// Möller-Trumbore ray/triangle intersection.
func (sv *SceneView) intersectTriangle(prim int32, ray Ray, tMax float32) (t, b1, b2 float32, ok bool) {
	p0 := sv.positions[sv.indices[3*prim][0]]
	p1 := sv.positions[sv.indices[3*prim+1][0]]
	p2 := sv.positions[sv.indices[3*prim+2][0]]

	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	pv := ray.Dir.Cross(e2)
	det := e1.Dot(pv)
	if det > -intersectEpsilon && det < intersectEpsilon {
		return 0, 0, 0, false
	}

	invDet := 1 / det
	tv := ray.Origin.Sub(p0)
	b1 = tv.Dot(pv) * invDet
	if b1 < 0 || b1 > 1 {
		return 0, 0, 0, false
	}

	qv := tv.Cross(e1)
	b2 = ray.Dir.Dot(qv) * invDet
	if b2 < 0 || b1+b2 > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(qv) * invDet
	if t <= intersectEpsilon || t >= tMax {
		return 0, 0, 0, false
	}
	return t, b1, b2, true
}

func (sv *SceneView) shadingNormal(prim int32, b1, b2 float32) types.Vec3 {
	n0 := sv.normals[sv.indices[3*prim][2]]
	n1 := sv.normals[sv.indices[3*prim+1][2]]
	n2 := sv.normals[sv.indices[3*prim+2][2]]
	return types.Barycentric(n0, n1, n2, b1, b2).Normalize()
}

func slabTest(min, max, origin, invDir types.Vec3, tMax float32) bool {
	tNear, tFar := float32(0), tMax
	for axis := 0; axis < 3; axis++ {
		t0 := (min[axis] - origin[axis]) * invDir[axis]
		t1 := (max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return false
		}
	}
	return true
}

func unpackVec3(tb *scene.TextureBuffer) []types.Vec3 {
	out := make([]types.Vec3, tb.Count)
	for index := range out {
		v := tb.At(index)
		out[index] = types.Vec3{v[0], v[1], v[2]}
	}
	return out
}
