package scene

import "errors"

var (
	ErrTextureAreaExceeded = errors.New("scene: buffer exceeds the addressable texture area")
	ErrBufferOverflow      = errors.New("scene: write past the end of texture buffer")
	ErrArchiveVersion      = errors.New("scene: unsupported archive version")
	ErrArchiveMismatch     = errors.New("scene: archive header does not match scene payload")
)
