package tracer

import "errors"

var (
	ErrTargetAllocation    = errors.New("tracer: could not allocate accumulation targets")
	ErrTargetsNotAllocated = errors.New("tracer: accumulation targets not allocated")
	ErrUnsupportedChange   = errors.New("tracer: unsupported change type")
	ErrNoSceneData         = errors.New("tracer: no scene data uploaded")
)
