package texture

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"

	// Register stdlib decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	// Register extra decoders
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/achilleasa/polaris-viewer/asset"
)

// A decoded texture stored as tightly packed RGBA8 pixels (top row first).
type Texture struct {
	// A stable content identity used for de-duplicating textures.
	Key string

	Width  uint32
	Height uint32

	Data []byte
}

// Create a new texture by decoding a Resource. The texture key is set to
// the resource identity.
func New(res *asset.Resource) (*Texture, error) {
	img, _, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	return FromImage(res.Identity(), img), nil
}

// Create a texture from an already decoded image. If key is empty, a key is
// derived from the image contents.
func FromImage(key string, img image.Image) *Texture {
	rgba := toRGBA(img)
	if key == "" {
		key = contentKey(rgba)
	}

	b := rgba.Bounds()
	return &Texture{
		Key:    key,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Data:   rgba.Pix,
	}
}

// Generate a content key for an image. Images with identical dimensions and
// pixels always map to the same key.
func ContentKey(img image.Image) string {
	return contentKey(toRGBA(img))
}

func contentKey(rgba *image.RGBA) string {
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(rgba.Bounds().Dx()))
	binary.LittleEndian.PutUint32(dims[4:], uint32(rgba.Bounds().Dy()))

	h := sha1.New()
	h.Write(dims[:])
	h.Write(rgba.Pix)
	return "sha1:" + hex.EncodeToString(h.Sum(nil))
}

// Resample texture data to the requested dimensions using bilinear filtering.
// If flipY is set the rows of the output are stored bottom row first.
func (t *Texture) Resample(width, height uint32, flipY bool) []byte {
	src := &image.RGBA{
		Pix:    t.Data,
		Stride: int(t.Width) * 4,
		Rect:   image.Rect(0, 0, int(t.Width), int(t.Height)),
	}

	dst := src
	if width != t.Width || height != t.Height {
		dst = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
		xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}

	out := make([]byte, len(dst.Pix))
	rowLen := int(width) * 4
	for y := 0; y < int(height); y++ {
		srcRow := y
		if flipY {
			srcRow = int(height) - 1 - y
		}
		copy(out[y*rowLen:(y+1)*rowLen], dst.Pix[srcRow*dst.Stride:srcRow*dst.Stride+rowLen])
	}

	return out
}

// Convert any image into a zero-origin RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
