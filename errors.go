package umat

import "errors"

var (
	// ErrLex indicates a property-text lexer failure.
	ErrLex = errors.New("lex error")

	// ErrParse indicates a property-text parser failure.
	ErrParse = errors.New("parse error")

	// ErrUnknownMaterialType indicates a type name with no registry entry.
	ErrUnknownMaterialType = errors.New("unknown material type")

	// ErrMalformedValue indicates a raw value that cannot be coerced to its field type.
	ErrMalformedValue = errors.New("malformed value")

	// ErrUnknownEnumMember indicates an enum token that is not a member of the enum.
	ErrUnknownEnumMember = errors.New("unknown enum member")

	// ErrUnhandledFieldType indicates a schema field whose Go type the reader cannot coerce into.
	ErrUnhandledFieldType = errors.New("unhandled field type")

	// ErrInvalidReference indicates a reference string or path that cannot be decomposed.
	ErrInvalidReference = errors.New("invalid reference")
)
