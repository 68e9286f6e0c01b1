package preset

import (
	"math"

	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/types"
)

// Append a quad spanning corner + s*u + t*v (s, t in [0, 1]) to the mesh as
// two triangles assigned to the given material index. The quad faces u x v.
func appendQuad(mesh *input.Mesh, corner, u, v types.Vec3, matIndex int) {
	base := uint32(len(mesh.Positions))
	normal := u.Cross(v).Normalize()

	mesh.Positions = append(mesh.Positions, corner, corner.Add(u), corner.Add(u).Add(v), corner.Add(v))
	mesh.Normals = append(mesh.Normals, normal, normal, normal, normal)
	mesh.UVs = append(mesh.UVs, types.Vec2{0, 0}, types.Vec2{1, 0}, types.Vec2{1, 1}, types.Vec2{0, 1})

	start := len(mesh.Indices)
	mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	mesh.Groups = append(mesh.Groups, input.Group{Start: start, Count: 6, MaterialIndex: matIndex})
}

// Generate an indexed unit uv sphere centered at the origin.
func uvSphere(name string, rings, segments int) *input.Mesh {
	mesh := input.NewMesh(name)
	for ring := 0; ring <= rings; ring++ {
		theta := math.Pi * float64(ring) / float64(rings)
		for seg := 0; seg <= segments; seg++ {
			phi := 2 * math.Pi * float64(seg) / float64(segments)
			p := types.Vec3{
				float32(math.Sin(theta) * math.Sin(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Cos(phi)),
			}
			mesh.Positions = append(mesh.Positions, p)
			mesh.Normals = append(mesh.Normals, p)
			mesh.UVs = append(mesh.UVs, types.Vec2{float32(seg) / float32(segments), 1 - float32(ring)/float32(rings)})
		}
	}

	stride := uint32(segments + 1)
	for ring := uint32(0); ring < uint32(rings); ring++ {
		for seg := uint32(0); seg < uint32(segments); seg++ {
			i0 := ring*stride + seg
			i1 := i0 + stride
			mesh.Indices = append(mesh.Indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}

	return mesh
}

// Expand an indexed mesh into a non-indexed triangle soup, dropping
// normals and uvs.
func triangleSoup(mesh *input.Mesh) *input.Mesh {
	soup := input.NewMesh(mesh.Name)
	soup.Transform = mesh.Transform
	soup.Materials = mesh.Materials
	soup.Positions = make([]types.Vec3, len(mesh.Indices))
	for index, vIndex := range mesh.Indices {
		soup.Positions[index] = mesh.Positions[vIndex]
	}
	return soup
}
