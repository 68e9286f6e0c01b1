package writer_test

import (
	"archive/zip"
	"encoding/gob"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/asset/scene/reader"
	"github.com/achilleasa/polaris-viewer/asset/scene/writer"
	"github.com/achilleasa/polaris-viewer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipRoundTrip(t *testing.T) {
	positions, err := scene.NewTextureBuffer("positions", 3, 1, 3, 2)
	require.NoError(t, err)
	require.NoError(t, positions.Write(0, 0, 0, 1, 0, 0, 0, 1, 0))

	bvhBuf, err := scene.PackBvh([]scene.BvhNode{
		{Left: -1, Material: 0, Max: types.Vec3{1, 1, 0}},
		{Left: -1, Material: 0, Max: types.Vec3{1, 1, 0}},
		{Left: 0, Material: -1, Max: types.Vec3{1, 1, 0}},
	}, 2)
	require.NoError(t, err)

	sc := &scene.Scene{
		ID:             "test-scene",
		Positions:      positions,
		Bvh:            bvhBuf,
		NumTriangles:   1,
		BvhLength:      3,
		MaxTextureSize: 2,
		Atlas:          scene.Atlas{Width: 1, Height: 1, Layers: 1, Data: []byte{1, 2, 3, 4}},
		Environment: scene.Environment{
			Color:     types.Vec3{0.5, 0.5, 1},
			Intensity: 2,
			Map:       &scene.EnvironmentMap{Width: 1, Height: 1, Data: []float32{1, 1, 1, 1}},
		},
		Camera: scene.Camera{Polar: 80, Radial: 3, FOV: 60, FocusDistance: 3},
	}

	sceneFile := filepath.Join(t.TempDir(), "scene.zip")
	require.NoError(t, writer.WriteScene(sc, sceneFile))

	got, err := reader.ReadScene(sceneFile)
	require.NoError(t, err)

	assert.Equal(t, sc.ID, got.ID)
	assert.Equal(t, sc.Positions.Data, got.Positions.Data)
	assert.Equal(t, sc.Positions.Width, got.Positions.Width)
	assert.Equal(t, sc.Positions.Height, got.Positions.Height)
	assert.Equal(t, sc.Bvh.Data, got.Bvh.Data)
	assert.Equal(t, sc.Atlas, got.Atlas)
	assert.Equal(t, sc.Environment, got.Environment)
	assert.Equal(t, sc.Camera, got.Camera)
	assert.Equal(t, sc.BvhLength, got.BvhLength)
}

func TestReadMissingPayload(t *testing.T) {
	sceneFile := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(sceneFile)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("readme.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = reader.ReadScene(sceneFile)
	if err == nil || !strings.Contains(err.Error(), "header.bin not found") {
		t.Fatalf("expected missing header error; got %v", err)
	}
}

func TestReadArchiveHeaderChecks(t *testing.T) {
	sc := &scene.Scene{ID: "payload", NumTriangles: 2, BvhLength: 5}

	type spec struct {
		header scene.ArchiveHeader
		expErr error
	}
	specs := []spec{
		{scene.NewArchiveHeader(sc), nil},
		{scene.ArchiveHeader{Version: scene.ArchiveVersion + 1, SceneID: "payload", NumTriangles: 2, BvhLength: 5}, scene.ErrArchiveVersion},
		{scene.ArchiveHeader{Version: scene.ArchiveVersion, SceneID: "other", NumTriangles: 2, BvhLength: 5}, scene.ErrArchiveMismatch},
		{scene.ArchiveHeader{Version: scene.ArchiveVersion, SceneID: "payload", NumTriangles: 3, BvhLength: 5}, scene.ErrArchiveMismatch},
	}

	for index, s := range specs {
		sceneFile := filepath.Join(t.TempDir(), "scene.zip")
		writeArchive(t, sceneFile, s.header, sc)

		_, err := reader.ReadScene(sceneFile)
		if !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestArchiveStatsEntry(t *testing.T) {
	sc := &scene.Scene{ID: "stats"}
	sceneFile := filepath.Join(t.TempDir(), "stats.zip")
	require.NoError(t, writer.WriteScene(sc, sceneFile))

	zr, err := zip.OpenReader(sceneFile)
	require.NoError(t, err)
	defer zr.Close()

	if zr.Comment != sc.ID {
		t.Fatalf("expected archive comment %q; got %q", sc.ID, zr.Comment)
	}

	names := make([]string, 0, len(zr.File))
	var stats string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == scene.ArchiveStatsEntry {
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			stats = string(data)
		}
	}

	assert.Equal(t, []string{scene.ArchiveHeaderEntry, scene.ArchiveSceneEntry, scene.ArchiveStatsEntry}, names)
	assert.Equal(t, sc.Stats(), stats)

	if err = writer.WriteScene(sc, filepath.Join(t.TempDir(), "scene.bin")); err == nil {
		t.Fatal("expected an error writing to a non zip target")
	}
}

func writeArchive(t *testing.T, filename string, header scene.ArchiveHeader, sc *scene.Scene) {
	f, err := os.Create(filename)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(scene.ArchiveHeaderEntry)
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(w).Encode(header))
	w, err = zw.Create(scene.ArchiveSceneEntry)
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(w).Encode(sc))
	require.NoError(t, zw.Close())
}
