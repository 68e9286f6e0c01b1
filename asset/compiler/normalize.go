package compiler

import (
	"fmt"

	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/types"
)

// A world-space copy of a mesh with all optional attributes resolved.
type flatMesh struct {
	positions []types.Vec3
	normals   []types.Vec3
	uvs       []types.Vec2
	tangents  []types.Vec3
	indices   []uint32
}

// Validate a mesh, synthesize any missing attributes and transform it into
// world space. The input mesh is not modified.
func normalizeMesh(m *input.Mesh) (*flatMesh, error) {
	for index, p := range m.Positions {
		if !p.IsFinite() {
			return nil, fmt.Errorf("mesh %q: %w (position %d)", m.Name, ErrNonFiniteGeometry, index)
		}
	}

	fm := &flatMesh{
		positions: append([]types.Vec3(nil), m.Positions...),
	}

	if m.IsIndexed() {
		fm.indices = m.Indices[:len(m.Indices)-len(m.Indices)%3]
		for _, index := range fm.indices {
			if int(index) >= len(m.Positions) {
				return nil, fmt.Errorf("mesh %q: %w (index %d, %d positions)", m.Name, ErrIndexOutOfRange, index, len(m.Positions))
			}
		}
	} else {
		fm.indices = make([]uint32, len(m.Positions)-len(m.Positions)%3)
		for index := range fm.indices {
			fm.indices[index] = uint32(index)
		}
	}

	if len(m.Normals) == len(m.Positions) {
		fm.normals = append([]types.Vec3(nil), m.Normals...)
	} else {
		fm.normals = smoothNormals(fm.positions, fm.indices)
	}

	if len(m.UVs) == len(m.Positions) {
		fm.uvs = m.UVs

		if len(m.Tangents) == len(m.Positions) {
			fm.tangents = append([]types.Vec3(nil), m.Tangents...)
		} else {
			fm.tangents = genTangents(fm.positions, fm.normals, fm.uvs, fm.indices)
		}
	}

	if !m.Transform.IsIdent() {
		normalMat := m.Transform.NormalMat()
		for index := range fm.positions {
			fm.positions[index] = m.Transform.TransformPoint(fm.positions[index])
			fm.normals[index] = normalMat.TransformDir(fm.normals[index]).Normalize()
		}
		for index := range fm.tangents {
			fm.tangents[index] = m.Transform.TransformDir(fm.tangents[index]).Normalize()
		}
	}

	return fm, nil
}

// Generate per-vertex normals by averaging the area-weighted normals of
// all faces sharing a vertex.
func smoothNormals(positions []types.Vec3, indices []uint32) []types.Vec3 {
	normals := make([]types.Vec3, len(positions))
	for tri := 0; tri < len(indices); tri += 3 {
		i0, i1, i2 := indices[tri], indices[tri+1], indices[tri+2]
		faceNormal := positions[i1].Sub(positions[i0]).Cross(positions[i2].Sub(positions[i0]))
		normals[i0] = normals[i0].Add(faceNormal)
		normals[i1] = normals[i1].Add(faceNormal)
		normals[i2] = normals[i2].Add(faceNormal)
	}

	for index, n := range normals {
		normals[index] = n.Normalize()
		if normals[index] == (types.Vec3{}) {
			normals[index] = types.Vec3{0, 1, 0}
		}
	}

	return normals
}

// Generate per-vertex tangents aligned with the U texture direction and
// orthogonalized against the vertex normal.
func genTangents(positions, normals []types.Vec3, uvs []types.Vec2, indices []uint32) []types.Vec3 {
	tangents := make([]types.Vec3, len(positions))
	for tri := 0; tri < len(indices); tri += 3 {
		i0, i1, i2 := indices[tri], indices[tri+1], indices[tri+2]
		e1 := positions[i1].Sub(positions[i0])
		e2 := positions[i2].Sub(positions[i0])
		duv1 := uvs[i1].Sub(uvs[i0])
		duv2 := uvs[i2].Sub(uvs[i0])

		det := duv1[0]*duv2[1] - duv2[0]*duv1[1]
		if det == 0 {
			continue
		}

		t := e1.Mul(duv2[1]).Sub(e2.Mul(duv1[1])).Mul(1 / det)
		tangents[i0] = tangents[i0].Add(t)
		tangents[i1] = tangents[i1].Add(t)
		tangents[i2] = tangents[i2].Add(t)
	}

	for index, t := range tangents {
		n := normals[index]
		t = t.Sub(n.Mul(n.Dot(t))).Normalize()
		if t == (types.Vec3{}) {
			t = n.Perpendicular()
		}
		tangents[index] = t
	}

	return tangents
}
