package compiler

import "errors"

var (
	ErrUndeclaredMaterial = errors.New("compiler: reference to undeclared material")
	ErrNonFiniteGeometry  = errors.New("compiler: mesh contains non-finite coordinates")
	ErrIndexOutOfRange    = errors.New("compiler: mesh index out of range")
	ErrInvalidGroup       = errors.New("compiler: invalid mesh group")
)
