package writer

import (
	"fmt"
	"strings"

	"github.com/achilleasa/polaris-viewer/asset/scene"
)

type Writer interface {
	Write(*scene.Scene) error
}

// Write a compiled scene archive. Only .zip targets are supported.
func WriteScene(sc *scene.Scene, filename string) error {
	if !strings.HasSuffix(filename, ".zip") {
		return fmt.Errorf("writeScene: unsupported file format %q", filename)
	}
	return newZipSceneWriter(filename).Write(sc)
}
