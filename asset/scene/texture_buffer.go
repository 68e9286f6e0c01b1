package scene

import (
	"fmt"
)

// A TextureBuffer stores a 1D list of fixed size records as a row-major 2D
// grid of float texels so it can be uploaded as a GPU texture. Each record
// occupies TexelsPerItem consecutive texels; each texel holds Channels floats.
type TextureBuffer struct {
	Name string

	Width    int
	Height   int
	Channels int

	// Number of texels used by each record.
	TexelsPerItem int

	// Number of records stored in the buffer.
	Count int

	Data []float32

	cursor int
}

// Allocate a zero-initialized buffer for count records.
//
// The buffer width is min(maxRowLength, count*texelsPerItem) and its height is
// the number of rows required to fit all texels. An error is returned if the
// buffer would need more than maxRowLength rows.
func NewTextureBuffer(name string, count, texelsPerItem, channels, maxRowLength int) (*TextureBuffer, error) {
	tb := &TextureBuffer{
		Name:          name,
		Channels:      channels,
		TexelsPerItem: texelsPerItem,
		Count:         count,
	}

	texels := count * texelsPerItem
	if texels == 0 {
		return tb, nil
	}

	if maxRowLength <= 0 {
		return nil, fmt.Errorf("%s: %w (max row length %d)", name, ErrTextureAreaExceeded, maxRowLength)
	}

	tb.Width = texels
	if tb.Width > maxRowLength {
		tb.Width = maxRowLength
	}
	tb.Height = (texels + tb.Width - 1) / tb.Width

	if tb.Height > maxRowLength {
		return nil, fmt.Errorf("%s: %w (%d texels, max row length %d)", name, ErrTextureAreaExceeded, texels, maxRowLength)
	}

	tb.Data = make([]float32, tb.Width*tb.Height*channels)
	return tb, nil
}

// Append values at the write cursor.
func (tb *TextureBuffer) Write(values ...float32) error {
	if tb.cursor+len(values) > tb.Count*tb.TexelsPerItem*tb.Channels {
		return fmt.Errorf("%s: %w", tb.Name, ErrBufferOverflow)
	}

	copy(tb.Data[tb.cursor:], values)
	tb.cursor += len(values)
	return nil
}

// Get the texel grid coordinates for a logical texel index.
func (tb *TextureBuffer) Coord(texelIndex int) (x, y int) {
	return texelIndex % tb.Width, texelIndex / tb.Width
}

// Get the values stored for record index. The returned slice aliases the
// buffer data.
func (tb *TextureBuffer) At(index int) []float32 {
	stride := tb.TexelsPerItem * tb.Channels
	return tb.Data[index*stride : (index+1)*stride]
}

// Get the size of the buffer data in bytes.
func (tb *TextureBuffer) SizeInBytes() int {
	if tb == nil {
		return 0
	}
	return 4 * len(tb.Data)
}
