package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/polaris-viewer/asset"
	"github.com/achilleasa/polaris-viewer/asset/compiler/bvh"
	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/asset/texture"
	"github.com/achilleasa/polaris-viewer/types"
)

// Pack the flattened scene into texture buffers.
func (sc *sceneCompiler) pack() (*scene.Scene, error) {
	maxSize := sc.opts.MaxTextureSize
	out := &scene.Scene{
		ID:             sc.inScene.ID,
		NumTriangles:   len(sc.matIndices),
		MaxTextureSize: maxSize,
		Camera: scene.Camera{
			Polar:         sc.inScene.Camera.Polar,
			Azimuthal:     sc.inScene.Camera.Azimuthal,
			Radial:        sc.inScene.Camera.Radial,
			LookAt:        sc.inScene.Camera.LookAt,
			FOV:           sc.inScene.Camera.FOV,
			FocusDistance: sc.inScene.Camera.FocusDistance,
			DefocusAngle:  sc.inScene.Camera.DefocusAngle,
		},
		Environment: scene.Environment{
			Color:     sc.inScene.Environment.Color,
			Intensity: sc.inScene.Environment.Intensity,
		},
	}

	var err error
	if out.Positions, err = packVec3("positions", sc.positions, maxSize); err != nil {
		return nil, err
	}
	if out.Normals, err = packVec3("normals", sc.normals, maxSize); err != nil {
		return nil, err
	}
	if out.Tangents, err = packVec3("tangents", sc.tangents, maxSize); err != nil {
		return nil, err
	}

	if out.UVs, err = scene.NewTextureBuffer("uvs", len(sc.uvs), 1, 2, maxSize); err != nil {
		return nil, err
	}
	for _, uv := range sc.uvs {
		if err = out.UVs.Write(uv[0], uv[1]); err != nil {
			return nil, err
		}
	}

	if out.Indices, err = packInt32("indices", sc.indices, indexRecordLen, maxSize); err != nil {
		return nil, err
	}
	if out.MaterialIndices, err = packInt32("material indices", sc.matIndices, 1, maxSize); err != nil {
		return nil, err
	}
	if out.Materials, err = scene.PackMaterials(sc.materials, maxSize); err != nil {
		return nil, err
	}

	if out.Bvh, err = sc.buildBvh(); err != nil {
		return nil, err
	}
	out.BvhLength = out.Bvh.Count

	out.Atlas = sc.buildAtlas()

	if sc.inScene.Environment.Map != nil {
		if out.Environment.Map, err = sc.loadEnvironmentMap(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Build and pack a BVH over all scene triangles. Empty scenes get an empty
// bvh buffer.
func (sc *sceneCompiler) buildBvh() (*scene.TextureBuffer, error) {
	if len(sc.matIndices) == 0 {
		sc.logger.Notice("scene contains no triangles; skipping BVH construction")
		return scene.PackBvh(nil, sc.opts.MaxTextureSize)
	}

	start := time.Now()
	refs := make([]bvh.PrimitiveRef, len(sc.matIndices))
	for tri := range refs {
		rec := sc.indices[tri*3*indexRecordLen:]
		refs[tri] = bvh.PrimitiveRef{
			Index:    int32(tri),
			Material: sc.matIndices[tri],
			BBox: bvh.FromTriangle(
				sc.positions[rec[0]],
				sc.positions[rec[indexRecordLen]],
				sc.positions[rec[2*indexRecordLen]],
			),
		}
	}

	nodes, err := bvh.Build(refs)
	if err != nil {
		return nil, err
	}
	sc.logger.Infof("built BVH with %d nodes in %d ms", len(nodes), time.Since(start).Nanoseconds()/1e6)

	return scene.PackBvh(nodes, sc.opts.MaxTextureSize)
}

// Resample all loaded textures to the largest texture dimensions and
// stack them as atlas layers.
func (sc *sceneCompiler) buildAtlas() scene.Atlas {
	var atlas scene.Atlas
	for _, tex := range sc.textures {
		if tex.Width > atlas.Width {
			atlas.Width = tex.Width
		}
		if tex.Height > atlas.Height {
			atlas.Height = tex.Height
		}
	}

	atlas.Layers = uint32(len(sc.textures))
	atlas.Data = make([]byte, 0, int(atlas.Width*atlas.Height*4)*len(sc.textures))
	for _, tex := range sc.textures {
		atlas.Data = append(atlas.Data, tex.Resample(atlas.Width, atlas.Height, sc.opts.FlipTexturesY)...)
	}

	return atlas
}

// Load the environment map and convert it into RGBA float data.
func (sc *sceneCompiler) loadEnvironmentMap() (*scene.EnvironmentMap, error) {
	ref := sc.inScene.Environment.Map

	var tex *texture.Texture
	if ref.Image != nil {
		tex = texture.FromImage("", ref.Image)
	} else {
		res, err := asset.NewResourceContext(sc.ctx, ref.Source, sc.assetRelPath)
		if err != nil {
			return nil, fmt.Errorf("environment map: %w", err)
		}
		defer res.Close()

		if tex, err = texture.New(res); err != nil {
			return nil, fmt.Errorf("environment map: %w", err)
		}
	}

	pixels := tex.Resample(tex.Width, tex.Height, sc.opts.FlipTexturesY)
	envMap := &scene.EnvironmentMap{
		Width:  tex.Width,
		Height: tex.Height,
		Data:   make([]float32, len(pixels)),
	}
	for index, v := range pixels {
		envMap.Data[index] = float32(v) / 255.0
	}

	return envMap, nil
}

func packVec3(name string, values []types.Vec3, maxSize int) (*scene.TextureBuffer, error) {
	tb, err := scene.NewTextureBuffer(name, len(values), 1, 3, maxSize)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err = tb.Write(v[0], v[1], v[2]); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

// Pack integer records; values are stored as floats.
func packInt32(name string, values []int32, channels, maxSize int) (*scene.TextureBuffer, error) {
	tb, err := scene.NewTextureBuffer(name, len(values)/channels, 1, channels, maxSize)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err = tb.Write(float32(v)); err != nil {
			return nil, err
		}
	}
	return tb, nil
}
