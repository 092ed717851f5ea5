package umat

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Reference identifies an object inside a package namespace.
//
// String forms: `Type'Package.Group.Name'`, `Type'Package.Name'` or the bare
// object path `Package.Name`. Only one group level is kept when serializing.
type Reference struct {
	TypeName    string `json:"typeName,omitempty" yaml:"typeName,omitempty"`   // Class name, empty for bare object paths
	PackageName string `json:"packageName" yaml:"packageName"`                 // Package the object lives in
	GroupName   string `json:"groupName,omitempty" yaml:"groupName,omitempty"` // Optional single group
	ObjectName  string `json:"objectName" yaml:"objectName"`                   // Object name
}

// typedRefPattern matches the Type'...' wrapper around an object path.
var typedRefPattern = regexp.MustCompile(`^(\w+)'([\w.\-_ ]+)'$`)

// ParseReference parses a reference string.
// It returns nil for the empty string and for "None"; any other input yields a reference.
// Middle path segments (groups) are not tracked.
func ParseReference(raw string) *Reference {
	s := strings.TrimSpace(raw)
	if s == "" || s == "None" {
		return nil
	}

	ref := &Reference{}
	if m := typedRefPattern.FindStringSubmatch(s); m != nil {
		ref.TypeName = m[1]
		s = m[2]
	}

	parts := strings.Split(s, ".")
	ref.PackageName = strings.TrimSpace(parts[0])
	ref.ObjectName = strings.TrimSpace(parts[len(parts)-1])

	return ref
}

// MustParseReference parses a reference and panics when it is None.
func MustParseReference(raw string) Reference {
	ref := ParseReference(raw)
	if ref == nil {
		panic(fmt.Sprintf("umat: reference %q is None", raw))
	}
	return *ref
}

// ReferenceFromPath decomposes an export file path of the form
// .../<Package>/<Type>/<Object>.<ext>.
func ReferenceFromPath(path string) (Reference, error) {
	clean := filepath.ToSlash(filepath.Clean(path))
	parts := strings.Split(clean, "/")
	if len(parts) < 3 {
		return Reference{}, fmt.Errorf("%w: path %q is not <package>/<type>/<object>", ErrInvalidReference, path)
	}

	file := parts[len(parts)-1]
	object := file
	if i := strings.IndexByte(file, '.'); i > 0 {
		object = file[:i]
	}

	ref := Reference{
		TypeName:    parts[len(parts)-2],
		PackageName: parts[len(parts)-3],
		ObjectName:  object,
	}
	if ref.TypeName == "" || ref.PackageName == "" || ref.ObjectName == "" {
		return Reference{}, fmt.Errorf("%w: path %q has empty components", ErrInvalidReference, path)
	}

	return ref, nil
}

// ObjectPath returns Package.Group.Name or Package.Name.
func (r Reference) ObjectPath() string {
	if r.GroupName == "" {
		return r.PackageName + "." + r.ObjectName
	}
	return r.PackageName + "." + r.GroupName + "." + r.ObjectName
}

// String returns the canonical string form, used as a map key throughout the module.
func (r Reference) String() string {
	if r.TypeName == "" {
		return r.ObjectPath()
	}
	return r.TypeName + "'" + r.ObjectPath() + "'"
}

// IsZero reports whether the reference has no package and no object.
func (r Reference) IsZero() bool {
	return r.PackageName == "" && r.ObjectName == ""
}

// WithType returns a copy of r with the type name set.
func (r Reference) WithType(typeName string) Reference {
	r.TypeName = typeName
	return r
}
