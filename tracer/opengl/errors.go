package opengl

import "errors"

var (
	ErrShaderCompile = errors.New("opengl tracer: shader compilation failed")
	ErrProgramLink   = errors.New("opengl tracer: program link failed")
	ErrIncompleteFbo = errors.New("opengl tracer: incomplete framebuffer")
)
