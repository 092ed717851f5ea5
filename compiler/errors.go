package compiler

import "errors"

var (
	// ErrUnsupportedMaterialType is returned for records without a compile rule.
	ErrUnsupportedMaterialType = errors.New("unsupported material type")
	// ErrInvalidSourceChannel is returned for negative TexCoordSource channels.
	ErrInvalidSourceChannel = errors.New("invalid source channel")
	// ErrCyclicReference is returned when a record is reached again through its own references.
	ErrCyclicReference = errors.New("cyclic material reference")
	// ErrMaxDepth is returned when nesting exceeds Options.MaxDepth.
	ErrMaxDepth = errors.New("material nesting too deep")
)
