package compiler

import (
	"context"
	"fmt"
	"time"

	"github.com/achilleasa/polaris-viewer/asset"
	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/asset/texture"
	"github.com/achilleasa/polaris-viewer/log"
	"github.com/achilleasa/polaris-viewer/types"
)

// Number of values in a per-corner index record.
const indexRecordLen = 4

type sceneCompiler struct {
	ctx    context.Context
	opts   Options
	logger log.Logger

	inScene *input.Scene

	// Base resource for resolving relative texture paths.
	assetRelPath *asset.Resource

	// A map of a texture key to its atlas slot. This cache allows us to
	// re-use already loaded textures when referenced by multiple materials.
	texIndexCache map[string]int32
	textures      []*texture.Texture

	positions []types.Vec3
	normals   []types.Vec3
	uvs       []types.Vec2
	tangents  []types.Vec3

	// (position, uv, normal, tangent) index records; one per triangle corner.
	indices []int32

	materials  []scene.Material
	matIndices []int32
}

// Compile a scene into a packed GPU-friendly scene representation. Meshes
// are flattened into world space, their materials and textures are
// de-duplicated and a BVH is built over all scene triangles.
//
// An empty scene compiles to a scene with empty buffers and no BVH.
func Compile(ctx context.Context, inScene *input.Scene, opts Options) (*scene.Scene, error) {
	sc := &sceneCompiler{
		ctx:           ctx,
		opts:          opts,
		logger:        log.New("scene compiler"),
		inScene:       inScene,
		texIndexCache: make(map[string]int32),
	}

	if inScene.AssetPath != "" {
		sc.assetRelPath = asset.NewResourceFromStream(inScene.AssetPath, nil)
	}

	start := time.Now()
	sc.logger.Noticef("compiling scene %s (%d meshes)", inScene.ID, len(inScene.Meshes))

	for _, mesh := range inScene.Meshes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := sc.appendMesh(mesh); err != nil {
			return nil, err
		}
	}

	out, err := sc.pack()
	if err != nil {
		return nil, err
	}

	sc.logger.Noticef(
		"compiled scene in %d ms (%d triangles, %d materials, %d textures, %d bvh nodes)",
		time.Since(start).Nanoseconds()/1e6,
		out.NumTriangles, len(sc.materials), len(sc.textures), out.BvhLength,
	)
	return out, nil
}

// Flatten mesh into the scene attribute lists with rebased indices.
func (sc *sceneCompiler) appendMesh(mesh *input.Mesh) error {
	// Validate material references before doing any work
	matCount := len(mesh.Materials)
	if matCount == 0 {
		matCount = 1
	}
	for _, group := range mesh.Groups {
		if group.MaterialIndex < 0 || group.MaterialIndex >= matCount {
			return fmt.Errorf("mesh %q: %w (material index %d, %d materials declared)", mesh.Name, ErrUndeclaredMaterial, group.MaterialIndex, len(mesh.Materials))
		}
	}

	fm, err := normalizeMesh(mesh)
	if err != nil {
		return err
	}

	// Ungrouped meshes use the first material for every complete triangle
	groups := mesh.Groups
	if len(groups) == 0 {
		groups = []input.Group{{Start: 0, Count: len(fm.indices), MaterialIndex: 0}}
	}
	for _, group := range groups {
		if group.Start < 0 || group.Count < 0 || group.Count%3 != 0 || group.Start+group.Count > len(fm.indices) {
			return fmt.Errorf("mesh %q: %w (start %d, count %d, %d indices)", mesh.Name, ErrInvalidGroup, group.Start, group.Count, len(fm.indices))
		}
	}

	// Materials
	matOffset := int32(len(sc.materials))
	if len(mesh.Materials) == 0 {
		sc.logger.Infof("mesh %q: no materials defined; using default material", mesh.Name)
		sc.materials = append(sc.materials, scene.DefaultMaterial())
	}
	for _, mat := range mesh.Materials {
		packed, err := sc.packMaterial(mat)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", mesh.Name, err)
		}
		sc.materials = append(sc.materials, packed)
	}

	// Attributes
	posOffset := int32(len(sc.positions))
	uvOffset := int32(-1)
	tangentOffset := int32(-1)
	sc.positions = append(sc.positions, fm.positions...)
	sc.normals = append(sc.normals, fm.normals...)
	if len(fm.uvs) != 0 {
		uvOffset = int32(len(sc.uvs))
		sc.uvs = append(sc.uvs, fm.uvs...)
	}
	if len(fm.tangents) != 0 {
		tangentOffset = int32(len(sc.tangents))
		sc.tangents = append(sc.tangents, fm.tangents...)
	}

	// Triangles
	triCount := 0
	for _, group := range groups {
		end := group.Start + group.Count
		for _, vIndex := range fm.indices[group.Start:end] {
			rec := [indexRecordLen]int32{posOffset + int32(vIndex), -1, posOffset + int32(vIndex), -1}
			if uvOffset >= 0 {
				rec[1] = uvOffset + int32(vIndex)
			}
			if tangentOffset >= 0 {
				rec[3] = tangentOffset + int32(vIndex)
			}
			sc.indices = append(sc.indices, rec[:]...)
		}

		for tri := 0; tri < (end-group.Start)/3; tri++ {
			sc.matIndices = append(sc.matIndices, matOffset+int32(group.MaterialIndex))
		}
		triCount += (end - group.Start) / 3
	}

	sc.logger.Infof("mesh %q: appended %d vertices, %d triangles", mesh.Name, len(fm.positions), triCount)
	return nil
}

// Convert a material into its packed representation.
func (sc *sceneCompiler) packMaterial(mat *input.Material) (scene.Material, error) {
	packed := scene.DefaultMaterial()
	if mat == nil {
		return packed, nil
	}

	packed.Albedo = mat.Albedo
	packed.Emissive = mat.Emissive.Mul(mat.EmissiveIntensity)
	packed.Metallic = mat.Metallic
	packed.Roughness = mat.Roughness

	packed.Opacity = mat.Opacity
	if mat.Opacity >= 0.99 {
		packed.Opacity = 1 - mat.Transmission
	}

	packed.IOR = mat.IOR
	if packed.IOR == 0 {
		packed.IOR = 1
	}

	slots := []struct {
		ref  *input.TextureRef
		slot *int32
	}{
		{mat.AlbedoMap, &packed.AlbedoTexture},
		{mat.RoughnessMap, &packed.RoughnessTexture},
		{mat.MetalnessMap, &packed.MetalnessTexture},
		{mat.NormalMap, &packed.NormalTexture},
		{mat.EmissiveMap, &packed.EmissiveTexture},
	}
	var err error
	for _, s := range slots {
		if s.ref == nil {
			continue
		}
		if *s.slot, err = sc.bakeTexture(mat.Name, s.ref); err != nil {
			return packed, err
		}
	}

	return packed, nil
}

// Load a texture and return its atlas slot. Textures are de-duplicated by
// their source identity or, for in-memory images, their content. Missing
// texture sources are skipped and assigned slot -1.
func (sc *sceneCompiler) bakeTexture(matName string, ref *input.TextureRef) (int32, error) {
	key, tex, err := sc.loadTexture(matName, ref)
	if err != nil {
		return -1, err
	}

	if texIndex, exists := sc.texIndexCache[key]; exists {
		sc.logger.Infof("%q: re-using already loaded texture %q", matName, key)
		return texIndex, nil
	} else if tex == nil {
		return -1, nil
	}

	texIndex := int32(len(sc.textures))
	sc.texIndexCache[key] = texIndex
	sc.textures = append(sc.textures, tex)
	return texIndex, nil
}

// Resolve the texture key and load the texture unless it is already cached.
// A nil texture and an empty key are returned for missing texture sources.
func (sc *sceneCompiler) loadTexture(matName string, ref *input.TextureRef) (string, *texture.Texture, error) {
	if ref.Image != nil {
		key := texture.ContentKey(ref.Image)
		if _, exists := sc.texIndexCache[key]; exists {
			return key, nil, nil
		}
		return key, texture.FromImage(key, ref.Image), nil
	}

	res, err := asset.NewResourceContext(sc.ctx, ref.Source, sc.assetRelPath)
	if ctxErr := sc.ctx.Err(); ctxErr != nil {
		return "", nil, ctxErr
	} else if err != nil {
		sc.logger.Warningf("%q: skipping missing texture %q: %v", matName, ref.Source, err)
		return "", nil, nil
	}
	defer res.Close()

	key := res.Identity()
	if _, exists := sc.texIndexCache[key]; exists {
		return key, nil, nil
	}

	sc.logger.Infof("%q: processing texture %q", matName, ref.Source)
	tex, err := texture.New(res)
	if err != nil {
		return "", nil, fmt.Errorf("%q: %w", matName, err)
	}
	return key, tex, nil
}
