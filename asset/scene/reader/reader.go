package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/polaris-viewer/asset"
	"github.com/achilleasa/polaris-viewer/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Reader factories keyed by lower-case file extension.
var readers = map[string]func() Reader{
	".zip": newZipSceneReader,
}

// Returns true if filename has an extension with a registered reader.
func Supported(filename string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Read scene from a file or URL.
func ReadScene(filename string) (*scene.Scene, error) {
	return ReadSceneContext(context.Background(), filename)
}

// Same as ReadScene but remote fetches are bound to ctx.
func ReadSceneContext(ctx context.Context, filename string) (*scene.Scene, error) {
	factory, ok := readers[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("readScene: unsupported file format %q", filename)
	}

	res, err := asset.NewResourceContext(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return factory().Read(res)
}
