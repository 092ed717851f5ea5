// Package manifest builds the package table of an export repository: which
// package file each package name refers to.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/umat"
)

// ErrEmptyManifest is returned when a manifest file declares no packages.
var ErrEmptyManifest = errors.New("manifest declares no packages")

// PackageExts lists the package file extensions picked up by ScanDir.
var PackageExts = []string{".utx", ".usx", ".ukx", ".uax", ".rom", ".u", ".upx"}

// Manifest maps uppercased package basenames to package paths relative to
// the repository root, slash separated.
type Manifest struct {
	Packages map[string]string `yaml:"packages"`
}

// Key returns the lookup key of a package name or file name.
func Key(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if ext := filepath.Ext(base); ext != "" && slices.Contains(PackageExts, strings.ToLower(ext)) {
		base = strings.TrimSuffix(base, ext)
	}
	return cases.Upper(language.Und).String(base)
}

// Lookup returns the package path registered for name.
func (m *Manifest) Lookup(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	p, ok := m.Packages[Key(name)]
	return p, ok
}

// Len returns the number of packages.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Packages)
}

// ScanDir walks root for package files. The exports directory is skipped.
// When two files share a basename the first in lexical order wins.
func ScanDir(root string) (*Manifest, error) {
	m := &Manifest{Packages: map[string]string{}}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.EqualFold(d.Name(), umat.ExportsDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(PackageExts, strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := Key(d.Name())
		if _, dup := m.Packages[key]; !dup {
			m.Packages[key] = filepath.ToSlash(rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return m, nil
}

// LoadFile reads a YAML manifest:
//
//	packages:
//	  MyTextures: Textures/MyTextures.utx
//
// Keys are normalized with Key.
func LoadFile(file string) (*Manifest, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var raw Manifest
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if len(raw.Packages) == 0 {
		return nil, fmt.Errorf("%s: %w", file, ErrEmptyManifest)
	}

	m := &Manifest{Packages: make(map[string]string, len(raw.Packages))}
	for name, p := range raw.Packages {
		m.Packages[Key(name)] = strings.ReplaceAll(p, `\`, "/")
	}
	return m, nil
}

// Load reads the manifest file when file is set and scans root otherwise.
func Load(root, file string) (*Manifest, error) {
	if file != "" {
		return LoadFile(file)
	}
	return ScanDir(root)
}
