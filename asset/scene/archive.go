package scene

// Compiled scene archive layout. Archives are zip files holding a gob encoded
// ArchiveHeader, the gob encoded Scene and a plain text copy of Scene.Stats().
const (
	ArchiveVersion = 1

	ArchiveHeaderEntry = "header.bin"
	ArchiveSceneEntry  = "scene.bin"
	ArchiveStatsEntry  = "stats.txt"
)

// Metadata stored ahead of the scene payload so readers can reject
// incompatible archives without decoding the scene.
type ArchiveHeader struct {
	Version      int
	SceneID      string
	NumTriangles int
	BvhLength    int
}

// Build the archive header for a scene.
func NewArchiveHeader(sc *Scene) ArchiveHeader {
	return ArchiveHeader{
		Version:      ArchiveVersion,
		SceneID:      sc.ID,
		NumTriangles: sc.NumTriangles,
		BvhLength:    sc.BvhLength,
	}
}

// Check that sc matches the header.
func (h ArchiveHeader) Validate(sc *Scene) error {
	if h.Version != ArchiveVersion {
		return ErrArchiveVersion
	}
	if sc == nil {
		return nil
	}
	if h.SceneID != sc.ID || h.NumTriangles != sc.NumTriangles || h.BvhLength != sc.BvhLength {
		return ErrArchiveMismatch
	}
	return nil
}
