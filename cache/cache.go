// Package cache resolves references to export files and memoizes the records
// read from them for the lifetime of the process.
//
// Entries are never evicted: a Cache reflects the export tree as it was when
// each record was first loaded. Build a new Cache to observe changes on disk.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/woozymasta/umat"
)

// ErrUnresolvedPackage is logged when a reference names a package missing
// from the package table. It is never returned by Load.
var ErrUnresolvedPackage = errors.New("unresolved package")

// Reader reads one record from an export file.
type Reader interface {
	Read(path string) (umat.Material, error)
}

// Options configures a Cache.
type Options struct {
	// Root is the repository root holding the exports directory.
	Root string
	// Packages maps package basenames to package paths relative to Root.
	// Keys are matched case-insensitively.
	Packages map[string]string
	// Reader reads export files (default umat.FileReader).
	Reader Reader
	// Logger defaults to umat.Logger().
	Logger *slog.Logger
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int64 `json:"hits" yaml:"hits"`
	Misses int64 `json:"misses" yaml:"misses"`
	Size   int   `json:"size" yaml:"size"`
}

// Cache is a load-once record store. It is safe for concurrent use.
type Cache struct {
	layout   umat.ExportLayout
	packages map[string]string
	reader   Reader
	log      *slog.Logger

	mu      sync.RWMutex
	records map[string]umat.Material // nil values mark references that were not found
	group   singleflight.Group

	hits, misses atomic.Int64
}

// New creates a cache.
func New(opt *Options) *Cache {
	var o Options
	if opt != nil {
		o = *opt
	}
	log := umat.LoggerOr(o.Logger)
	if o.Reader == nil {
		o.Reader = umat.FileReader{Options: &umat.ReadOptions{Logger: log}}
	}

	packages := make(map[string]string, len(o.Packages))
	for name, p := range o.Packages {
		packages[packageKey(name)] = p
	}

	return &Cache{
		layout:   umat.ExportLayout{Root: o.Root},
		packages: packages,
		reader:   o.Reader,
		log:      log,
		records:  map[string]umat.Material{},
	}
}

// packageKey folds a package name for lookups.
// Casers are stateful, so one is created per call.
func packageKey(name string) string {
	return cases.Upper(language.Und).String(name)
}

// Root returns the repository root.
func (c *Cache) Root() string { return c.layout.Root }

// Packages returns the known package names, sorted.
func (c *Cache) Packages() []string {
	return slices.Sorted(maps.Keys(c.packages))
}

// PackagePath returns the package path of name relative to the root.
func (c *Cache) PackagePath(name string) (string, bool) {
	p, ok := c.packages[packageKey(name)]
	return p, ok
}

// ResolvePath returns the export file of ref. It reports false, after
// logging, when the package is unknown or ref carries no type name.
func (c *Cache) ResolvePath(ref umat.Reference) (string, bool) {
	pkg, ok := c.PackagePath(ref.PackageName)
	if !ok {
		c.log.Warn("cannot resolve reference", "ref", ref.String(), "err", ErrUnresolvedPackage)
		return "", false
	}
	if ref.TypeName == "" {
		c.log.Warn("cannot resolve reference without type", "ref", ref.String())
		return "", false
	}
	return c.layout.PropsPath(pkg, ref), true
}

// AssetPath returns the sibling asset of ref with extension ext.
func (c *Cache) AssetPath(ref umat.Reference, ext string) (string, bool) {
	pkg, ok := c.PackagePath(ref.PackageName)
	if !ok || ref.TypeName == "" {
		return "", false
	}
	return c.layout.AssetPath(pkg, ref, ext), true
}

// Load returns the record ref points at, reading it on first use.
// A nil ref, an unresolved package and a missing file all yield a nil
// record and a nil error; such results are memoized too. Read errors are
// returned and not memoized.
func (c *Cache) Load(ctx context.Context, ref *umat.Reference) (umat.Material, error) {
	if ref == nil {
		return nil, nil
	}
	key := ref.String()

	if m, ok := c.lookup(key); ok {
		c.hits.Add(1)
		c.log.Debug("cache hit", "ref", key)
		return m, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if m, ok := c.lookup(key); ok {
			return m, nil
		}
		c.misses.Add(1)
		c.log.Debug("cache miss", "ref", key)

		m, err := c.read(*ref)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.records[key] = m
		c.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		m, _ := r.Val.(umat.Material)
		return m, nil
	}
}

func (c *Cache) lookup(key string) (umat.Material, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.records[key]
	return m, ok
}

// read resolves and reads ref. Unresolvable references yield nil.
func (c *Cache) read(ref umat.Reference) (umat.Material, error) {
	path, ok := c.ResolvePath(ref)
	if !ok {
		return nil, nil
	}

	m, err := c.reader.Read(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.log.Warn("export file not found", "ref", ref.String(), "path", path)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return m, nil
}

// Stats returns lookup counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	size := len(c.records)
	c.mu.RUnlock()
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Size: size}
}
