package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Path depth budget for accumulated samples.
	MaxDepth uint32

	// Path depth used for the first sample after a reset.
	PreviewDepth uint32

	// Stop accumulating after this many samples; 0 accumulates forever.
	MaxSamples uint32

	// Path to a fragment shader implementing the trace pass. Only used by
	// the interactive renderer.
	TraceShader string

	// Synchronize buffer swaps with the display refresh rate.
	VSync bool
}

// Get the default renderer options.
func DefaultOptions() Options {
	return Options{
		FrameW:       800,
		FrameH:       600,
		MaxDepth:     8,
		PreviewDepth: 2,
		VSync:        true,
	}
}

// Check that options are valid.
func (o Options) Validate() error {
	if o.FrameW == 0 || o.FrameH == 0 {
		return ErrInvalidFrameSize
	}
	if o.MaxDepth == 0 {
		return ErrInvalidMaxDepth
	}
	return nil
}
