package opengl

import (
	"fmt"
	"reflect"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/go-gl/gl/v3.3-core/gl"
)

// Texture units used by the trace program.
const (
	unitHistory = iota
	unitEnvironment
	unitPositions
	unitNormals
	unitUvs
	unitTangents
	unitIndices
	unitMaterials
	unitBvh
	unitTextures
	unitMaterialIndices
)

// Sampler uniform names indexed by texture unit.
var samplerUniforms = [...]string{
	unitHistory:         "u_history",
	unitEnvironment:     "u_environment",
	unitPositions:       "u_positions",
	unitNormals:         "u_normals",
	unitUvs:             "u_uvs",
	unitTangents:        "u_tangents",
	unitIndices:         "u_indices",
	unitMaterials:       "u_materials",
	unitBvh:             "u_bvh",
	unitTextures:        "u_textures",
	unitMaterialIndices: "u_material_indices",
}

// A named GL texture.
type texture struct {
	name   string
	target uint32
	handle uint32

	width  int32
	height int32
}

func newTexture(name string, target uint32) *texture {
	return &texture{name: name, target: target}
}

// Allocate the texture handle if needed and bind it to the given unit.
func (t *texture) bind(unit uint32) {
	if t.handle == 0 {
		gl.GenTextures(1, &t.handle)
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(t.target, t.handle)
}

func (t *texture) setNearestFilter() {
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

// Upload float texel data. Empty data is replaced by a single zero texel so
// the texture remains complete.
func (t *texture) uploadFloat(width, height, channels int, data []float32) error {
	internalFormat, format, err := floatFormat(channels)
	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}

	if width == 0 || height == 0 || len(data) == 0 {
		width, height = 1, 1
		data = make([]float32, channels)
	}

	t.bind(0)
	t.setNearestFilter()
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(t.target, 0, internalFormat, int32(width), int32(height), 0, format, gl.FLOAT, gl.Ptr(data))
	t.width, t.height = int32(width), int32(height)
	return checkError(t.name)
}

// Upload a packed texture buffer.
func (t *texture) uploadBuffer(tb *scene.TextureBuffer, channels int) error {
	if tb == nil {
		return t.uploadFloat(0, 0, channels, nil)
	}
	return t.uploadFloat(tb.Width, tb.Height, tb.Channels, tb.Data)
}

// Upload an RGBA8 texture array.
func (t *texture) uploadAtlas(atlas scene.Atlas) error {
	width, height, layers := int32(atlas.Width), int32(atlas.Height), int32(atlas.Layers)
	data := atlas.Data
	if layers == 0 || width == 0 || height == 0 {
		width, height, layers = 1, 1, 1
		data = make([]byte, 4)
	}

	t.bind(0)
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(t.target, 0, gl.RGBA8, width, height, layers, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	t.width, t.height = width, height
	return checkError(t.name)
}

func (t *texture) release() {
	if t == nil || t.handle == 0 {
		return
	}
	gl.DeleteTextures(1, &t.handle)
	t.handle = 0
	t.width, t.height = 0, 0
}

// Map a channel count to GL float texture formats.
func floatFormat(channels int) (internalFormat int32, format uint32, err error) {
	switch channels {
	case 1:
		return gl.R32F, gl.RED, nil
	case 2:
		return gl.RG32F, gl.RG, nil
	case 3:
		return gl.RGB32F, gl.RGB, nil
	case 4:
		return gl.RGBA32F, gl.RGBA, nil
	}
	return 0, 0, fmt.Errorf("unsupported channel count %d", channels)
}

// The set of textures holding uploaded scene data.
type textureSet struct {
	Positions       *texture
	Normals         *texture
	Uvs             *texture
	Tangents        *texture
	Indices         *texture
	Materials       *texture
	MaterialIndices *texture
	Bvh             *texture
	Textures        *texture
	Environment     *texture
}

func newTextureSet() *textureSet {
	return &textureSet{
		Positions:       newTexture("positions", gl.TEXTURE_2D),
		Normals:         newTexture("normals", gl.TEXTURE_2D),
		Uvs:             newTexture("uvs", gl.TEXTURE_2D),
		Tangents:        newTexture("tangents", gl.TEXTURE_2D),
		Indices:         newTexture("indices", gl.TEXTURE_2D),
		Materials:       newTexture("materials", gl.TEXTURE_2D),
		MaterialIndices: newTexture("materialIndices", gl.TEXTURE_2D),
		Bvh:             newTexture("bvh", gl.TEXTURE_2D),
		Textures:        newTexture("textures", gl.TEXTURE_2D_ARRAY),
		Environment:     newTexture("environment", gl.TEXTURE_2D),
	}
}

// Upload scene buffers and the texture atlas.
func (ts *textureSet) UploadSceneData(sc *scene.Scene) error {
	type upload struct {
		tex      *texture
		buf      *scene.TextureBuffer
		channels int
	}

	uploads := []upload{
		{ts.Positions, sc.Positions, 3},
		{ts.Normals, sc.Normals, 3},
		{ts.Uvs, sc.UVs, 2},
		{ts.Tangents, sc.Tangents, 3},
		{ts.Indices, sc.Indices, 4},
		{ts.Materials, sc.Materials, 4},
		{ts.MaterialIndices, sc.MaterialIndices, 1},
		{ts.Bvh, sc.Bvh, 4},
	}
	for _, u := range uploads {
		if err := u.tex.uploadBuffer(u.buf, u.channels); err != nil {
			return err
		}
	}

	return ts.Textures.uploadAtlas(sc.Atlas)
}

// Upload the environment map. Scenes without a map get a 1x1 placeholder.
func (ts *textureSet) UploadEnvironment(env scene.Environment) error {
	if env.Map == nil {
		return ts.Environment.uploadFloat(0, 0, 4, nil)
	}
	return ts.Environment.uploadFloat(int(env.Map.Width), int(env.Map.Height), 4, env.Map.Data)
}

// Bind all textures to their units.
func (ts *textureSet) Bind() {
	ts.Environment.bind(unitEnvironment)
	ts.Positions.bind(unitPositions)
	ts.Normals.bind(unitNormals)
	ts.Uvs.bind(unitUvs)
	ts.Tangents.bind(unitTangents)
	ts.Indices.bind(unitIndices)
	ts.Materials.bind(unitMaterials)
	ts.Bvh.bind(unitBvh)
	ts.Textures.bind(unitTextures)
	ts.MaterialIndices.bind(unitMaterialIndices)
}

// Release all textures.
func (ts *textureSet) Release() {
	reflVal := reflect.ValueOf(*ts)
	for fieldIndex := 0; fieldIndex < reflVal.NumField(); fieldIndex++ {
		if tex, ok := reflVal.Field(fieldIndex).Interface().(*texture); ok {
			tex.release()
		}
	}
}

// A float accumulation target rendered through a framebuffer object.
type target struct {
	tex *texture
	fbo uint32
}

func newTarget(index int, frameW, frameH uint32) (*target, error) {
	t := &target{tex: newTexture(fmt.Sprintf("target%d", index), gl.TEXTURE_2D)}
	if err := t.tex.uploadFloat(int(frameW), int(frameH), 4, make([]float32, 4*frameW*frameH)); err != nil {
		t.release()
		return nil, err
	}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex.handle, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.release()
		return nil, fmt.Errorf("%w: %s (status 0x%x)", ErrIncompleteFbo, t.tex.name, status)
	}
	return t, nil
}

func (t *target) release() {
	if t == nil {
		return
	}
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	t.tex.release()
}

func checkError(name string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%x", name, code)
	}
	return nil
}
