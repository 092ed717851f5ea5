// Package imageload decodes the images exported next to texture records.
package imageload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/woozymasta/umat"
)

var (
	// ErrImageNotFound is returned when no exported image exists for a reference.
	ErrImageNotFound = errors.New("image not found")
	// ErrUnsupportedFormat is returned for file extensions without a decoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// AssetResolver locates sibling assets of a record.
type AssetResolver interface {
	AssetPath(ref umat.Reference, ext string) (string, bool)
}

// Options configures a Loader.
type Options struct {
	// Exts lists the extensions tried in order (default umat.ImageExts).
	Exts []string
	// Logger defaults to umat.Logger().
	Logger *slog.Logger
}

// Loader finds and decodes exported images. Decoded images are kept for
// the lifetime of the loader. It is safe for concurrent use.
type Loader struct {
	resolver AssetResolver
	exts     []string
	log      *slog.Logger

	mu     sync.Mutex
	images map[string]image.Image
}

// New creates a loader resolving asset paths through r.
func New(r AssetResolver, opt *Options) *Loader {
	var o Options
	if opt != nil {
		o = *opt
	}
	if len(o.Exts) == 0 {
		o.Exts = umat.ImageExts
	}
	return &Loader{
		resolver: r,
		exts:     o.Exts,
		log:      umat.LoggerOr(o.Logger),
		images:   map[string]image.Image{},
	}
}

// LoadImage returns the first existing image for ref in extension order.
func (l *Loader) LoadImage(ctx context.Context, ref umat.Reference) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, ext := range l.exts {
		path, ok := l.resolver.AssetPath(ref, ext)
		if !ok {
			break
		}
		img, err := l.load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrImageNotFound, ref)
}

func (l *Loader) load(path string) (image.Image, error) {
	l.mu.Lock()
	img, ok := l.images[path]
	l.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	l.log.Debug("image decoded", "path", path, "size", img.Bounds().Size().String())

	l.mu.Lock()
	l.images[path] = img
	l.mu.Unlock()
	return img, nil
}

// DecodeFile decodes the image at path, choosing the decoder by extension.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Decode decodes an image in the format named by ext (".tga", ".png", ...).
func Decode(r io.Reader, ext string) (image.Image, error) {
	switch strings.ToLower(ext) {
	case ".tga":
		return tga.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	case ".tif", ".tiff":
		return tiff.Decode(r)
	case ".webp":
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
