/*
Package umat reads Unreal-Engine material property dumps into typed records.

Exports are laid out as <root>/exports/<package>/<Type>/<Object>.props.txt.
The type directory selects the record type from a closed registry; every
declared field found in the file is coerced onto the record and the rest keep
their compiled-in defaults. Records can be written back with the same schema
and checked for values that compile to nothing useful.

Reader example:

	m, err := umat.ReadFile("exports/MyPackage/Texture/Brick01.props.txt", nil)
	if err != nil {
		// handle error
	}
	tex := m.(*umat.Texture)

Reference example:

	ref := umat.ParseReference("Texture'MyPackage.Walls.Brick01'")
	_ = ref.String() // Texture'MyPackage.Brick01'

Writer example:

	out, err := umat.Format(m, nil)
	if err != nil {
		// handle error
	}

Validator example:

	issues := umat.Validate(m, nil)
	if len(issues) != 0 {
		// handle validation issues
	}

Compilation into a shading graph lives in the compiler package; the cache
package resolves references through a package manifest and memoizes records.
*/
package umat
