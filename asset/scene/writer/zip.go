package writer

import (
	"archive/zip"
	"encoding/gob"
	"io"
	"os"
	"time"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/log"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write the scene archive: header, gob payload and a text stats table.
func (w *zipSceneWriter) Write(sc *scene.Scene) (err error) {
	w.logger.Noticef("writing compressed scene to %s", w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := zipFile.Close(); err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(zipFile)
	zw.SetComment(sc.ID)

	entries := []struct {
		name  string
		write func(io.Writer) error
	}{
		{scene.ArchiveHeaderEntry, func(out io.Writer) error { return gob.NewEncoder(out).Encode(scene.NewArchiveHeader(sc)) }},
		{scene.ArchiveSceneEntry, func(out io.Writer) error { return gob.NewEncoder(out).Encode(sc) }},
		{scene.ArchiveStatsEntry, func(out io.Writer) error {
			_, err := io.WriteString(out, sc.Stats())
			return err
		}},
	}

	for _, entry := range entries {
		ew, err := zw.Create(entry.name)
		if err != nil {
			return err
		}
		if err = entry.write(ew); err != nil {
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
