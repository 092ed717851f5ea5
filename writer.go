package umat

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Encode writes a record to w as property text.
func Encode(w io.Writer, m Material, opt *FormatOptions) error {
	fopt := opt.normalize()
	schema := SchemaOf(m)
	if schema == nil {
		return fmt.Errorf("%w: %T", ErrUnknownMaterialType, m)
	}

	// Buffered writer reduces syscall overhead and short writes.
	bw := bufio.NewWriter(w)
	wr := &writer{w: bw, indent: fopt.Indent, defaults: fopt.WriteDefaults}
	if err := wr.writeRecord(schema, reflect.ValueOf(m).Elem()); err != nil {
		return err
	}

	return bw.Flush()
}

// EncodeFile writes a record to a file.
func EncodeFile(path string, m Material, opt *FormatOptions) error {
	b, err := Format(m, opt)
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o600)
}

// Format renders a record to bytes.
func Format(m Material, opt *FormatOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, opt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writer writes records as property text.
type writer struct {
	w        io.Writer // Writer to write to
	indent   string    // Indentation string
	cache    []string  // Cache of indentation strings
	level    int       // Current nesting level
	defaults bool      // Write fields equal to their default
}

// writeRecord writes every schema field of v.
func (w *writer) writeRecord(s *Schema, v reflect.Value) error {
	for _, f := range s.Fields {
		fv := v.FieldByIndex(f.index)
		if !w.defaults && reflect.DeepEqual(fv.Interface(), f.Default) {
			continue
		}

		if f.Kind == KindList {
			if err := w.writeList(f, fv); err != nil {
				return err
			}
			continue
		}

		if err := w.writeString(f.Name); err != nil {
			return err
		}
		if err := w.writeString("="); err != nil {
			return err
		}
		if err := w.writeValue(f, fv); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		if err := w.writeString("\n"); err != nil {
			return err
		}
	}

	return nil
}

// writeList writes a list as a block with one element per line.
func (w *writer) writeList(f Field, v reflect.Value) error {
	if err := w.writeString(f.Name); err != nil {
		return err
	}
	if v.Len() == 0 {
		return w.writeString("={}\n")
	}
	if err := w.writeString("=\n{\n"); err != nil {
		return err
	}

	w.level++
	for i := range v.Len() {
		if err := w.writeIndent(); err != nil {
			return err
		}
		if err := w.writeValue(*f.Elem, v.Index(i)); err != nil {
			return fmt.Errorf("%s[%d]: %w", f.Name, i, err)
		}
		if err := w.writeString("\n"); err != nil {
			return err
		}
	}
	w.level--

	return w.writeString("}\n")
}

// writeValue writes one value of the field's semantic type.
func (w *writer) writeValue(f Field, v reflect.Value) error {
	switch f.Kind {
	case KindInt:
		return w.writeString(strconv.FormatInt(v.Int(), 10))
	case KindFloat:
		return w.writeNumber(v.Float())
	case KindString:
		return w.writeQuoted(v.String())
	case KindBool:
		if v.Bool() {
			return w.writeString("True")
		}
		return w.writeString("False")
	case KindEnum:
		name := enumName(f.Members, uint8(v.Uint()))
		if name == "" {
			return fmt.Errorf("%w: ordinal %d of %s", ErrUnknownEnumMember, v.Uint(), f.Type.Name())
		}
		return w.writeString(name)
	case KindColor:
		c := v.Interface().(Color)
		return w.writeString(fmt.Sprintf("(R=%d,G=%d,B=%d,A=%d)", c.R, c.G, c.B, c.A))
	case KindRotator:
		r := v.Interface().(Rotator)
		return w.writeString(fmt.Sprintf("(Pitch=%d,Yaw=%d,Roll=%d)", r.Pitch, r.Yaw, r.Roll))
	case KindReference:
		ref := v.Interface().(Reference)
		if ref.IsZero() {
			return w.writeString("None")
		}
		return w.writeString(ref.String())
	case KindOptional:
		if v.IsNil() {
			return w.writeString("None")
		}
		return w.writeValue(*f.Elem, v.Elem())
	case KindStruct:
		return w.writeStruct(f, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnhandledFieldType, f.Type)
	}
}

// writeStruct writes (Name=Value,...) with every member.
func (w *writer) writeStruct(f Field, v reflect.Value) error {
	if err := w.writeString("("); err != nil {
		return err
	}
	for i, sub := range f.Fields {
		if i > 0 {
			if err := w.writeString(","); err != nil {
				return err
			}
		}
		if err := w.writeString(sub.Name); err != nil {
			return err
		}
		if err := w.writeString("="); err != nil {
			return err
		}
		if err := w.writeValue(sub, v.FieldByIndex(sub.index)); err != nil {
			return fmt.Errorf("%s: %w", sub.Name, err)
		}
	}

	return w.writeString(")")
}

// writeIndent writes the current indentation level to the writer.
func (w *writer) writeIndent() error {
	if w.level <= 0 {
		return nil
	}

	// Cache repeated indentation strings per nesting level.
	return w.writeString(w.indentFor(w.level))
}

// writeNumber writes a float64 value to the writer.
func (w *writer) writeNumber(v float64) error {
	var buf [32]byte
	b := strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
	_, err := w.w.Write(b)

	return err
}

// writeQuoted writes a quoted string, escaping quotes and backslashes.
func (w *writer) writeQuoted(s string) error {
	if err := w.writeString("\""); err != nil {
		return err
	}
	if err := w.writeString(quoteEscaper.Replace(s)); err != nil {
		return err
	}

	return w.writeString("\"")
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// writeString writes a string to the writer.
func (w *writer) writeString(s string) error {
	_, err := io.WriteString(w.w, s)
	return err
}

// indentFor returns the indentation string for a nesting level.
func (w *writer) indentFor(level int) string {
	if level <= 0 {
		return ""
	}

	if len(w.cache) <= level {
		w.cache = append(w.cache, make([]string, level-len(w.cache)+1)...)
	}
	if w.cache[level] == "" {
		// Cache computed indentation for this level.
		w.cache[level] = strings.Repeat(w.indent, level)
	}

	return w.cache[level]
}
