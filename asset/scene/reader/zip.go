package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/polaris-viewer/asset"
	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/log"
)

type zipSceneReader struct {
	logger log.Logger
}

func newZipSceneReader() Reader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read a compiled scene archive. The header entry is decoded and validated
// before the scene payload.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`loading compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip.NewReader needs an io.ReaderAt; remote resources are plain streams
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip reader: %s: %w", sceneRes.Path(), err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		switch f.Name {
		case scene.ArchiveHeaderEntry, scene.ArchiveSceneEntry, scene.ArchiveStatsEntry:
			entries[f.Name] = f
		default:
			p.logger.Warningf("unknown entry %s in scene archive; skipping", f.Name)
		}
	}

	for _, name := range []string{scene.ArchiveHeaderEntry, scene.ArchiveSceneEntry} {
		if entries[name] == nil {
			return nil, fmt.Errorf("zip reader: %s not found in %s", name, sceneRes.Path())
		}
	}

	var header scene.ArchiveHeader
	if err = decodeEntry(entries[scene.ArchiveHeaderEntry], &header); err != nil {
		return nil, err
	}
	if err = header.Validate(nil); err != nil {
		return nil, fmt.Errorf("zip reader: %s: %w (found %d, expected %d)", sceneRes.Path(), err, header.Version, scene.ArchiveVersion)
	}

	var sc *scene.Scene
	if err = decodeEntry(entries[scene.ArchiveSceneEntry], &sc); err != nil {
		return nil, err
	}
	if err = header.Validate(sc); err != nil {
		return nil, fmt.Errorf("zip reader: %s: %w", sceneRes.Path(), err)
	}

	p.logger.Noticef("loaded scene %s (%d triangles) in %d ms", header.SceneID, header.NumTriangles, time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}

func decodeEntry(f *zip.File, out interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if err = gob.NewDecoder(rc).Decode(out); err != nil {
		return fmt.Errorf("zip reader: failed to decode %s: %w", f.Name, err)
	}
	return nil
}
