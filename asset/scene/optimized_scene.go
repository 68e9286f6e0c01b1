package scene

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/achilleasa/polaris-viewer/types"
	"github.com/olekukonko/tablewriter"
)

// Default maximum texture row length used when packing scene buffers.
const DefaultMaxTextureSize = 4096

// Initial camera settings.
type Camera struct {
	Polar         float32
	Azimuthal     float32
	Radial        float32
	LookAt        types.Vec3
	FOV           float32
	FocusDistance float32
	DefocusAngle  float32
}

// A layered RGBA8 texture array. All layers share the same dimensions.
type Atlas struct {
	Width  uint32
	Height uint32
	Layers uint32

	Data []byte
}

// Get the pixel data for an atlas layer.
func (a *Atlas) Layer(index int) []byte {
	layerSize := int(a.Width * a.Height * 4)
	return a.Data[index*layerSize : (index+1)*layerSize]
}

// An equirectangular environment map stored as RGBA float data.
type EnvironmentMap struct {
	Width  uint32
	Height uint32
	Data   []float32
}

// The scene background.
type Environment struct {
	Color     types.Vec3
	Intensity float32
	Map       *EnvironmentMap
}

// A packed scene. All geometry is in world space and stored in buffers that
// share the same packing contract so it can be uploaded as-is to the GPU.
// A packed scene is treated as immutable.
type Scene struct {
	ID string

	// Geometry attributes.
	Positions *TextureBuffer
	Normals   *TextureBuffer
	UVs       *TextureBuffer
	Tangents  *TextureBuffer

	// Per triangle corner (position, uv, normal, tangent) indices.
	Indices *TextureBuffer

	Materials       *TextureBuffer
	MaterialIndices *TextureBuffer
	Bvh             *TextureBuffer

	Atlas       Atlas
	Environment Environment
	Camera      Camera

	NumTriangles   int
	BvhLength      int
	MaxTextureSize int
}

// Returns true if the scene contains no geometry.
func (sc *Scene) IsEmpty() bool {
	return sc.NumTriangles == 0
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Dims", "Size"})
	table.Append([]string{"Geometry", "---", fmt.Sprintf("%d tris", sc.NumTriangles), fmtSize(sc.Positions.SizeInBytes(), sc.Normals.SizeInBytes(), sc.UVs.SizeInBytes(), sc.Tangents.SizeInBytes(), sc.Indices.SizeInBytes())})
	for _, tb := range []*TextureBuffer{sc.Positions, sc.Normals, sc.UVs, sc.Tangents, sc.Indices} {
		table.Append(bufferRow(tb))
	}
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"BVH", "---", fmt.Sprintf("%d nodes", sc.BvhLength), fmtSize(sc.Bvh.SizeInBytes())})
	table.Append(bufferRow(sc.Bvh))
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Materials", "---", " ", fmtSize(sc.Materials.SizeInBytes(), sc.MaterialIndices.SizeInBytes())})
	table.Append(bufferRow(sc.Materials))
	table.Append(bufferRow(sc.MaterialIndices))
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Textures", "---", fmt.Sprintf("%d layers", sc.Atlas.Layers), fmtSize(len(sc.Atlas.Data), 4*sc.envMapLen())})
	table.Append([]string{"", "atlas", fmt.Sprintf("%dx%d", sc.Atlas.Width, sc.Atlas.Height), fmtSize(len(sc.Atlas.Data))})
	if sc.Environment.Map != nil {
		table.Append([]string{"", "environment", fmt.Sprintf("%dx%d", sc.Environment.Map.Width, sc.Environment.Map.Height), fmtSize(4 * sc.envMapLen())})
	}
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.SizeInBytes()), " ")})

	table.Render()
	return buf.String()
}

// Get the total size of the packed scene data in bytes.
func (sc *Scene) SizeInBytes() int {
	total := len(sc.Atlas.Data) + 4*sc.envMapLen()
	for _, tb := range []*TextureBuffer{sc.Positions, sc.Normals, sc.UVs, sc.Tangents, sc.Indices, sc.Materials, sc.MaterialIndices, sc.Bvh} {
		total += tb.SizeInBytes()
	}
	return total
}

func (sc *Scene) envMapLen() int {
	if sc.Environment.Map == nil {
		return 0
	}
	return len(sc.Environment.Map.Data)
}

func bufferRow(tb *TextureBuffer) []string {
	if tb == nil {
		return []string{"", "-", "-", fmtSize(0)}
	}
	return []string{"", tb.Name, fmt.Sprintf("%dx%d", tb.Width, tb.Height), fmtSize(tb.SizeInBytes())}
}

// Sum a set of byte sizes and return back a formatted value with the
// appropriate byte/kb/mb unit.
func fmtSize(sizes ...int) string {
	var totalBytes float32 = 0.0
	for _, size := range sizes {
		totalBytes += float32(size)
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
