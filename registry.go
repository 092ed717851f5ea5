package umat

import (
	"reflect"
	"slices"
)

// constructors lists every record type known to the reader.
var constructors = []func() Material{
	func() Material { return NewTexture() },
	func() Material { return NewCubemap() },
	func() Material { return NewConstantColor() },
	func() Material { return NewFadeColor() },
	func() Material { return NewShader() },
	func() Material { return NewColorModifier() },
	func() Material { return NewFinalBlend() },
	func() Material { return NewOpacityModifier() },
	func() Material { return NewCombiner() },
	func() Material { return NewTexCoordSource() },
	func() Material { return NewTexEnvMap() },
	func() Material { return NewTexOscillator() },
	func() Material { return NewTexPanner() },
	func() Material { return NewTexRotator() },
	func() Material { return NewTexScaler() },
	func() Material { return NewVariableTexPanner() },
	func() Material { return NewVertexColor() },
	func() Material { return NewMaterialSwitch() },
	func() Material { return NewMaterialSequence() },
}

var (
	schemasByName = map[string]*Schema{}
	schemasByType = map[reflect.Type]*Schema{}
	typeNames     []string
)

func init() {
	for _, mk := range constructors {
		s := newSchema(mk)
		schemasByName[s.TypeName] = s
		schemasByType[s.typ] = s
		typeNames = append(typeNames, s.TypeName)
	}
	slices.Sort(typeNames)
}

// LookupType returns the schema registered under typeName, or nil.
// The table is closed; names are matched exactly.
func LookupType(typeName string) *Schema {
	return schemasByName[typeName]
}

// MaterialTypes returns the registered type names in sorted order.
func MaterialTypes() []string {
	return slices.Clone(typeNames)
}

// SchemaOf returns the schema of a record, or nil for types outside the registry.
func SchemaOf(m Material) *Schema {
	if m == nil {
		return nil
	}
	t := reflect.TypeOf(m)
	if t.Kind() != reflect.Pointer {
		return nil
	}
	return schemasByType[t.Elem()]
}
