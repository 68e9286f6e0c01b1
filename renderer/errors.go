package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrEmptyScene       = errors.New("renderer: scene contains no geometry")
	ErrInvalidFrameSize = errors.New("renderer: frame dimensions must be non-zero")
	ErrInvalidMaxDepth  = errors.New("renderer: max depth must be non-zero")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
