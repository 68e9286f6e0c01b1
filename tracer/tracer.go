package tracer

import (
	"time"

	"github.com/achilleasa/polaris-viewer/camera"
)

type ChangeType uint8

const (
	// Upload packed scene buffers. Payload: *scene.Scene.
	SetSceneData ChangeType = iota

	// Update the scene background. Payload: scene.Environment.
	SetEnvironment
)

// Number of accumulation targets owned by a tracer.
const NumTargets = 2

// A request to trace one sample per pixel into an accumulation target.
//
// Tracers blend the new sample into Target using the running mean
// target = history + (sample - history) / SampleCount, where history is
// read from the History target. When SampleCount is 1 the history is ignored.
type SampleRequest struct {
	// Indices of the output and history targets.
	Target  int
	History int

	// Number of samples accumulated including this one.
	SampleCount uint32

	// The path depth budget for this sample.
	MaxDepth uint32

	// The camera ray generation basis.
	Basis camera.RayBasis

	// A random seed value for the tracer's random number generator.
	Seed uint32
}

// A request to display the contents of an accumulation target.
type PresentRequest struct {
	Target      int
	SampleCount uint32
}

// Tracer statistics.
type Stats struct {
	// Time spent tracing and presenting the last frame.
	TraceTime   time.Duration
	PresentTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Allocate the accumulation targets for the given frame dimensions.
	// Any previously allocated targets are released first.
	AllocTargets(frameW, frameH uint32) error

	// Append a change to the tracer's update buffer. Changes of the same
	// type overwrite each other.
	AppendChange(ChangeType, interface{})

	// Apply all pending changes from the update buffer.
	ApplyPendingChanges() error

	// Trace one sample.
	Trace(SampleRequest) error

	// Present an accumulation target.
	Present(PresentRequest) error

	// Retrieve last frame statistics.
	Stats() *Stats
}
