package compiler

import "github.com/achilleasa/polaris-viewer/asset/scene"

// Scene compiler options.
type Options struct {
	// The maximum row length (and row count) of packed buffers. This
	// should match the max texture size supported by the GPU.
	MaxTextureSize int

	// Store texture rows bottom-first so they can be sampled with GL
	// texture coordinates.
	FlipTexturesY bool
}

// Get the default compiler options.
func DefaultOptions() Options {
	return Options{
		MaxTextureSize: scene.DefaultMaxTextureSize,
		FlipTexturesY:  true,
	}
}
