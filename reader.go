package umat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// ReadFile reads the record stored at path. The record type and reference are
// taken from the path (<package>/<Type>/<Object>.props.txt).
func ReadFile(path string, opt *ReadOptions) (Material, error) {
	ref, err := ReferenceFromPath(path)
	if err != nil {
		return nil, err
	}
	if LookupType(ref.TypeName) == nil {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrUnknownMaterialType, ref.TypeName)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m, err := ReadBytes(ref, b, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// Decode reads a record for ref from r.
func Decode(ref Reference, r io.Reader, opt *ReadOptions) (Material, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ReadBytes(ref, b, opt)
}

// ReadBytes reads a record for ref from property text.
func ReadBytes(ref Reference, data []byte, opt *ReadOptions) (Material, error) {
	schema := LookupType(ref.TypeName)
	if schema == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterialType, ref.TypeName)
	}

	props, err := newParser(data).parseFile()
	if err != nil {
		return nil, err
	}

	return FromProperties(ref, props, opt)
}

// FromProperties builds a record of ref's type from already parsed properties.
// Declared fields missing from props keep their defaults; unknown keys are ignored.
func FromProperties(ref Reference, props *Properties, opt *ReadOptions) (Material, error) {
	ropt := opt.normalize()
	schema := LookupType(ref.TypeName)
	if schema == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterialType, ref.TypeName)
	}

	m := schema.New(ref)
	rv := reflect.ValueOf(m).Elem()
	fold := !ropt.DisableCaseInsensitive
	for _, f := range schema.Fields {
		raw, ok := props.Get(f.Name, fold)
		if !ok {
			continue
		}
		if err := coerce(f, rv.FieldByIndex(f.index), raw); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}

	if ropt.Logger.Enabled(context.Background(), slog.LevelDebug) {
		for _, p := range props.All() {
			if _, ok := schema.Field(p.Name); !ok {
				ropt.Logger.Debug("ignoring unknown property", "type", schema.TypeName, "ref", ref.String(), "property", p.Name)
			}
		}
	}

	return m, nil
}

// FileReader reads records from export files. It is the default reader of the cache.
type FileReader struct {
	Options *ReadOptions
}

// Read reads the record stored at path.
func (r FileReader) Read(path string) (Material, error) {
	return ReadFile(path, r.Options)
}

// coerce converts raw into the field's semantic type and stores it in dst.
func coerce(f Field, dst reflect.Value, raw Value) error {
	switch f.Kind {
	case KindInt:
		s, err := scalarText(raw)
		if err != nil {
			return err
		}
		n, err := parseInt(s, f.Type.Bits())
		if err != nil {
			return err
		}
		dst.SetInt(n)

	case KindFloat:
		s, err := scalarText(raw)
		if err != nil {
			return err
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrMalformedValue, s)
		}
		dst.SetFloat(n)

	case KindString:
		if raw.Kind == ValueNone {
			dst.SetString("")
			return nil
		}
		s, err := scalarText(raw)
		if err != nil {
			return err
		}
		dst.SetString(s)

	case KindBool:
		s, err := scalarText(raw)
		if err != nil {
			return err
		}
		b, err := parseBool(s)
		if err != nil {
			return err
		}
		dst.SetBool(b)

	case KindEnum:
		s, err := scalarText(raw)
		if err != nil {
			return err
		}
		token := ""
		if fields := strings.Fields(s); len(fields) > 0 {
			token = fields[0]
		}
		for i, name := range f.Members {
			if name == token {
				dst.SetUint(uint64(i))
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not a %s", ErrUnknownEnumMember, token, f.Type.Name())

	case KindColor:
		c := dst.Interface().(Color)
		err := copyStruct(raw, map[string]func(string) error{
			"R": channelSetter(&c.R),
			"G": channelSetter(&c.G),
			"B": channelSetter(&c.B),
			"A": channelSetter(&c.A),
		})
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(c))

	case KindRotator:
		r := dst.Interface().(Rotator)
		err := copyStruct(raw, map[string]func(string) error{
			"Pitch": angleSetter(&r.Pitch),
			"Yaw":   angleSetter(&r.Yaw),
			"Roll":  angleSetter(&r.Roll),
		})
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(r))

	case KindReference:
		if raw.IsNone() {
			dst.Set(reflect.Zero(f.Type))
			return nil
		}
		s, err := scalarText(raw)
		if err != nil {
			return err
		}
		ref := ParseReference(s)
		if ref == nil {
			dst.Set(reflect.Zero(f.Type))
			return nil
		}
		dst.Set(reflect.ValueOf(*ref))

	case KindOptional:
		if raw.IsNone() || (f.Elem.Kind == KindReference && raw.Kind == ValueScalar && ParseReference(raw.Str) == nil) {
			dst.Set(reflect.Zero(f.Type))
			return nil
		}
		elem := reflect.New(f.Type.Elem())
		if err := coerce(*f.Elem, elem.Elem(), raw); err != nil {
			return err
		}
		dst.Set(elem)

	case KindList:
		var items []Value
		switch {
		case raw.Kind == ValueList:
			items = raw.Items
		case raw.IsNone(), raw.Kind == ValueStruct && raw.Fields.Len() == 0:
		default:
			return fmt.Errorf("%w: expected a list, got %s", ErrMalformedValue, raw.Kind)
		}
		if len(items) == 0 {
			dst.Set(reflect.Zero(f.Type))
			return nil
		}
		out := reflect.MakeSlice(f.Type, len(items), len(items))
		for i, it := range items {
			if err := coerce(*f.Elem, out.Index(i), it); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)

	case KindStruct:
		if raw.Kind != ValueStruct {
			return fmt.Errorf("%w: expected a struct, got %s", ErrMalformedValue, raw.Kind)
		}
		for _, sub := range f.Fields {
			v, ok := raw.Fields.Get(sub.Name, true)
			if !ok {
				continue
			}
			if err := coerce(sub, dst.FieldByIndex(sub.index), v); err != nil {
				return fmt.Errorf("%s: %w", sub.Name, err)
			}
		}

	default:
		return fmt.Errorf("%w: %s", ErrUnhandledFieldType, f.Type)
	}

	return nil
}

// scalarText returns the text of a scalar value.
func scalarText(raw Value) (string, error) {
	if raw.Kind != ValueScalar {
		return "", fmt.Errorf("%w: expected a scalar, got %s", ErrMalformedValue, raw.Kind)
	}
	return strings.TrimSpace(raw.Str), nil
}

// parseInt parses a decimal integer. Integral float notation ("3.000000") is accepted.
func parseInt(s string, bits int) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, bits); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedValue, s)
	}
	n := int64(f)
	if bits < 64 && (n < -(1<<(bits-1)) || n > (1<<(bits-1))-1) {
		return 0, fmt.Errorf("%w: %q overflows %d bits", ErrMalformedValue, s, bits)
	}

	return n, nil
}

// parseBool accepts true/false and 1/0, case-insensitively.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", ErrMalformedValue, s)
	}
}

// copyStruct copies the named sub-fields of a struct value through setters.
// Sub-fields absent from raw keep their current value.
func copyStruct(raw Value, setters map[string]func(string) error) error {
	if raw.Kind != ValueStruct {
		return fmt.Errorf("%w: expected a struct, got %s", ErrMalformedValue, raw.Kind)
	}
	for name, set := range setters {
		v, ok := raw.Fields.Get(name, true)
		if !ok {
			continue
		}
		s, err := scalarText(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := set(s); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func channelSetter(dst *uint8) func(string) error {
	return func(s string) error {
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return fmt.Errorf("%w: %q is not a color channel", ErrMalformedValue, s)
		}
		*dst = uint8(n)
		return nil
	}
}

func angleSetter(dst *int32) func(string) error {
	return func(s string) error {
		n, err := parseInt(s, 32)
		if err != nil {
			return err
		}
		*dst = int32(n)
		return nil
	}
}
