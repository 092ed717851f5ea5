package umat

import "log/slog"

// ReadOptions controls how property files become records.
type ReadOptions struct {
	// DisableCaseInsensitive requires property names to match field names exactly.
	DisableCaseInsensitive bool
	// Logger receives debug output about ignored properties. Defaults to Logger().
	Logger *slog.Logger
}

// FormatOptions controls writer formatting.
type FormatOptions struct {
	// WriteDefaults writes fields that equal their compiled-in default.
	WriteDefaults bool
	// Indent is the indentation string for nested list blocks (default is four spaces).
	Indent string
}

// ValidateOptions controls validation rules.
type ValidateOptions struct {
	// DisableReferenceCheck skips warnings about unset required references.
	DisableReferenceCheck bool
	// DisableSizeCheck skips warnings about textures without a declared size.
	DisableSizeCheck bool
}

// normalize normalizes the ReadOptions.
func (o *ReadOptions) normalize() ReadOptions {
	if o == nil {
		return ReadOptions{Logger: Logger()}
	}

	out := *o
	out.Logger = LoggerOr(out.Logger)

	return out
}

// normalize normalizes the FormatOptions.
func (o *FormatOptions) normalize() FormatOptions {
	if o == nil {
		return FormatOptions{Indent: "    "}
	}

	out := *o
	if out.Indent == "" {
		out.Indent = "    "
	}

	return out
}

// normalize normalizes the ValidateOptions.
func (o *ValidateOptions) normalize() ValidateOptions {
	if o == nil {
		return ValidateOptions{}
	}

	return *o
}
