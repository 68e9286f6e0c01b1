package renderer

type Renderer interface {
	// Render until the renderer is closed or an error occurs.
	Render() error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() LoopStats
}
