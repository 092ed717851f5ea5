package umat

import (
	"path/filepath"
	"strings"
)

// PropsExt is the extension of exported property files.
const PropsExt = ".props.txt"

// ExportsDir is the directory below the repository root holding exports.
const ExportsDir = "exports"

// ImageExts lists exported image extensions in lookup order.
var ImageExts = []string{".tga", ".png", ".bmp", ".tif", ".tiff", ".webp"}

// ExportLayout maps references onto the export tree of a repository:
// <Root>/exports/<package-stem>/<Type>/<Object><ext>.
type ExportLayout struct {
	Root string
}

// PackageStem returns a package path without its extension,
// e.g. "Textures/Foo.utx" becomes "Textures/Foo".
func PackageStem(packagePath string) string {
	p := normalizeOSPath(packagePath)
	return strings.TrimSuffix(p, filepath.Ext(p))
}

// ObjectDir returns the directory holding exports of the given type.
func (l ExportLayout) ObjectDir(packagePath, typeName string) string {
	return filepath.Join(l.Root, ExportsDir, PackageStem(packagePath), typeName)
}

// PropsPath returns the property-file path for ref inside the package at packagePath.
func (l ExportLayout) PropsPath(packagePath string, ref Reference) string {
	return filepath.Join(l.ObjectDir(packagePath, ref.TypeName), ref.ObjectName+PropsExt)
}

// AssetPath returns the sibling asset path with the given extension.
func (l ExportLayout) AssetPath(packagePath string, ref Reference, ext string) string {
	return filepath.Join(l.ObjectDir(packagePath, ref.TypeName), ref.ObjectName+ext)
}

// normalizeOSPath normalizes a path for OS-specific separators.
func normalizeOSPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return filepath.FromSlash(p)
}
