package cpu

import (
	"math"
	"math/rand"

	"github.com/achilleasa/polaris-viewer/types"
)

// Offset applied to secondary ray origins to avoid self-intersections.
const rayOffset float32 = 1e-4

// A SampleFunc estimates the radiance arriving along a primary ray using at
// most maxDepth path segments.
type SampleFunc func(sv *SceneView, ray Ray, maxDepth uint32, rng *rand.Rand) types.Vec3

// A simple path tracer that treats every surface as a Lambertian reflector
// and adds material emission. It serves as a reference consumer of the
// packed scene buffers.
func DiffuseShader(sv *SceneView, ray Ray, maxDepth uint32, rng *rand.Rand) types.Vec3 {
	radiance := types.Vec3{}
	throughput := types.Vec3{1, 1, 1}

	for depth := uint32(0); depth < maxDepth; depth++ {
		hit, ok := sv.Intersect(ray)
		if !ok {
			return radiance.Add(throughput.MulVec(sv.Background(ray.Dir)))
		}

		mat := sv.Material(hit.Material)
		radiance = radiance.Add(throughput.MulVec(mat.Emissive))
		throughput = throughput.MulVec(mat.Albedo)

		ray = Ray{
			Origin: hit.Point.Add(hit.Normal.Mul(rayOffset)),
			Dir:    cosineSampleHemisphere(hit.Normal, rng),
		}
	}

	return radiance
}

// A shader that returns the interpolated surface normal of the first hit
// mapped to [0, 1] or black for misses.
func NormalShader(sv *SceneView, ray Ray, _ uint32, _ *rand.Rand) types.Vec3 {
	hit, ok := sv.Intersect(ray)
	if !ok {
		return types.Vec3{}
	}
	return hit.Normal.Add(types.Vec3{1, 1, 1}).Mul(0.5)
}

func cosineSampleHemisphere(n types.Vec3, rng *rand.Rand) types.Vec3 {
	r1 := 2 * math.Pi * rng.Float64()
	r2 := rng.Float64()
	r2s := math.Sqrt(r2)

	u := n.Perpendicular()
	v := n.Cross(u)
	return u.Mul(float32(math.Cos(r1) * r2s)).
		Add(v.Mul(float32(math.Sin(r1) * r2s))).
		Add(n.Mul(float32(math.Sqrt(1 - r2)))).
		Normalize()
}
