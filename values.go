package umat

import "strings"

// ValueKind represents the kind of a raw property value.
type ValueKind int

const (
	// ValueScalar is a bare token: number, identifier, enum token or reference string.
	ValueScalar ValueKind = iota
	// ValueNone is the literal None.
	ValueNone
	// ValueStruct is a (Name=Value, ...) record.
	ValueStruct
	// ValueList is an ordered list of values.
	ValueList
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueNone:
		return "none"
	case ValueStruct:
		return "struct"
	case ValueList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a raw property value as produced by the property-text parser.
type Value struct {
	Fields *Properties // Struct fields
	Str    string      // Scalar text (unquoted)
	Items  []Value     // List items
	Kind   ValueKind   // Value kind
	Quoted bool        // Scalar was written as a quoted string
}

// Scalar creates a scalar value.
func Scalar(s string) Value { return Value{Kind: ValueScalar, Str: s} }

// None creates a None value.
func None() Value { return Value{Kind: ValueNone} }

// Struct creates a struct value from properties.
func Struct(fields *Properties) Value { return Value{Kind: ValueStruct, Fields: fields} }

// List creates a list value.
func List(items ...Value) Value { return Value{Kind: ValueList, Items: items} }

// IsNone reports whether the value is None or an empty scalar.
func (v Value) IsNone() bool {
	return v.Kind == ValueNone || (v.Kind == ValueScalar && !v.Quoted && strings.TrimSpace(v.Str) == "")
}

// Property is one named entry of a property block.
type Property struct {
	Name  string // Property name as written
	Value Value  // Raw value
}

// Properties is an ordered name -> raw value mapping.
type Properties struct {
	list  []Property
	exact map[string]int
	fold  map[string]int
}

// NewProperties creates an empty property block.
func NewProperties() *Properties {
	return &Properties{exact: make(map[string]int), fold: make(map[string]int)}
}

// Set assigns a value, replacing an existing entry with the same exact name.
func (p *Properties) Set(name string, v Value) {
	if i, ok := p.exact[name]; ok {
		p.list[i].Value = v
		return
	}

	p.exact[name] = len(p.list)
	if _, ok := p.fold[strings.ToLower(name)]; !ok {
		p.fold[strings.ToLower(name)] = len(p.list)
	}
	p.list = append(p.list, Property{Name: name, Value: v})
}

// setIndex stores v at position idx of the list property name, growing it with None.
func (p *Properties) setIndex(name string, idx int, v Value) {
	cur, ok := p.Get(name, false)
	if !ok || cur.Kind != ValueList {
		cur = Value{Kind: ValueList}
	}
	for len(cur.Items) <= idx {
		cur.Items = append(cur.Items, None())
	}
	cur.Items[idx] = v
	p.Set(name, cur)
}

// Get returns the value for name. With fold set, the lookup is case-insensitive.
func (p *Properties) Get(name string, fold bool) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	if i, ok := p.exact[name]; ok {
		return p.list[i].Value, true
	}
	if fold {
		if i, ok := p.fold[strings.ToLower(name)]; ok {
			return p.list[i].Value, true
		}
	}

	return Value{}, false
}

// Len returns the number of entries.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

// All returns entries in file order.
func (p *Properties) All() []Property {
	if p == nil {
		return nil
	}
	return p.list
}
