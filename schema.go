package umat

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// FieldKind is the semantic type of a schema field.
type FieldKind uint8

// Field kinds.
const (
	KindUnhandled FieldKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindEnum
	KindColor
	KindRotator
	KindReference
	KindOptional
	KindList
	KindStruct
)

var fieldKindNames = [...]string{
	KindUnhandled: "unhandled",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindBool:      "bool",
	KindEnum:      "enum",
	KindColor:     "color",
	KindRotator:   "rotator",
	KindReference: "reference",
	KindOptional:  "optional",
	KindList:      "list",
	KindStruct:    "struct",
}

// String returns the kind name.
func (k FieldKind) String() string {
	if int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return "unknown"
}

// Field describes one declared property of a record type.
type Field struct {
	Name    string       // Property name in files
	Kind    FieldKind    // Semantic type
	Elem    *Field       // Element of optional and list fields
	Fields  []Field      // Members of struct fields
	Members []string     // Enum members in ordinal order
	Default any          // Compiled-in default value
	Type    reflect.Type // Go type of the field
	index   []int        // Struct field index path
}

// TypeString renders the semantic type, e.g. "optional<reference>".
func (f Field) TypeString() string {
	switch f.Kind {
	case KindOptional, KindList:
		return f.Kind.String() + "<" + f.Elem.TypeString() + ">"
	case KindEnum:
		return f.Type.Name()
	case KindStruct:
		return f.Type.Name()
	default:
		return f.Kind.String()
	}
}

// Schema is the ordered field list of one record type, built once from the
// record's struct tags and its constructor defaults.
type Schema struct {
	TypeName string
	Fields   []Field

	typ   reflect.Type
	newFn func() Material
}

// New returns a record of this type with every field at its default.
func (s *Schema) New(ref Reference) Material {
	m := s.newFn()
	m.base().Reference = ref
	return m
}

// Field returns the field with the given name, matched case-insensitively.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

var (
	enumType      = reflect.TypeFor[Enum]()
	colorType     = reflect.TypeFor[Color]()
	rotatorType   = reflect.TypeFor[Rotator]()
	referenceType = reflect.TypeFor[Reference]()
)

// newSchema builds the schema of the record returned by mk.
func newSchema(mk func() Material) *Schema {
	proto := mk()
	v := reflect.ValueOf(proto).Elem()
	s := &Schema{TypeName: proto.TypeName(), typ: v.Type(), newFn: mk}
	s.Fields = collectFields(v, nil)
	return s
}

// collectFields walks the exported fields of v in declaration order,
// flattening embedded structs.
func collectFields(v reflect.Value, prefix []int) []Field {
	t := v.Type()
	var out []Field
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		index := append(append([]int(nil), prefix...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			out = append(out, collectFields(v.Field(i), index)...)
			continue
		}

		name := sf.Tag.Get("prop")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		f := describe(sf.Type)
		f.Name = name
		f.index = index
		f.Default = v.Field(i).Interface()
		out = append(out, f)
	}

	return out
}

// describe maps a Go type onto its semantic field kind.
func describe(t reflect.Type) Field {
	f := Field{Type: t}
	switch {
	case t == colorType:
		f.Kind = KindColor
	case t == rotatorType:
		f.Kind = KindRotator
	case t == referenceType:
		f.Kind = KindReference
	case t.Implements(enumType) && t.Kind() == reflect.Uint8:
		f.Kind = KindEnum
		f.Members = reflect.Zero(t).Interface().(Enum).EnumMembers()
	default:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f.Kind = KindInt
		case reflect.Float32, reflect.Float64:
			f.Kind = KindFloat
		case reflect.String:
			f.Kind = KindString
		case reflect.Bool:
			f.Kind = KindBool
		case reflect.Pointer:
			elem := describe(t.Elem())
			f.Kind = KindOptional
			f.Elem = &elem
		case reflect.Slice:
			elem := describe(t.Elem())
			f.Kind = KindList
			f.Elem = &elem
		case reflect.Struct:
			f.Kind = KindStruct
			f.Fields = collectFields(reflect.New(t).Elem(), nil)
		default:
			f.Kind = KindUnhandled
		}
	}

	return f
}

// References yields every non-nil reference held by a record, keyed by field
// path (e.g. "Materials[2]" or "SequenceItems[0].Material"), in schema order.
func References(m Material) iter.Seq2[string, Reference] {
	return func(yield func(string, Reference) bool) {
		s := SchemaOf(m)
		if s == nil {
			return
		}
		v := reflect.ValueOf(m).Elem()
		for _, f := range s.Fields {
			if !walkReferences(f, f.Name, v.FieldByIndex(f.index), yield) {
				return
			}
		}
	}
}

func walkReferences(f Field, path string, v reflect.Value, yield func(string, Reference) bool) bool {
	switch f.Kind {
	case KindReference:
		ref := v.Interface().(Reference)
		if ref.IsZero() {
			return true
		}
		return yield(path, ref)
	case KindOptional:
		if v.IsNil() {
			return true
		}
		return walkReferences(*f.Elem, path, v.Elem(), yield)
	case KindList:
		for i := range v.Len() {
			if !walkReferences(*f.Elem, fmt.Sprintf("%s[%d]", path, i), v.Index(i), yield) {
				return false
			}
		}
	case KindStruct:
		for _, sub := range f.Fields {
			if !walkReferences(sub, path+"."+sub.Name, v.FieldByIndex(sub.index), yield) {
				return false
			}
		}
	}
	return true
}
