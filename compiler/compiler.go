// Package compiler lowers material records into a shading graph.
//
// Each record type has one rule. Rules allocate nodes in a graph owned by the
// current Compile call and describe their result with SocketOutputs; nested
// references are loaded through a MaterialLoader and compiled recursively.
// A reference that loads to nothing compiles to nil and its contribution is
// omitted by the parent.
package compiler

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strings"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/graph"
)

// MaterialLoader resolves references to records. A nil record with a nil
// error means the reference could not be found.
type MaterialLoader interface {
	Load(ctx context.Context, ref *umat.Reference) (umat.Material, error)
}

// ImageLoader decodes the image exported next to a texture.
type ImageLoader interface {
	LoadImage(ctx context.Context, ref umat.Reference) (image.Image, error)
}

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// Options configures a Compiler.
type Options struct {
	// Images decodes texture images. Without it image nodes carry no pixels.
	Images ImageLoader
	// MaxDepth limits reference nesting (default DefaultMaxDepth).
	MaxDepth int
	// Logger receives per-rule debug output and image load warnings. Defaults to umat.Logger().
	Logger *slog.Logger
}

// normalize normalizes the Options.
func (o *Options) normalize() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	out.Logger = umat.LoggerOr(out.Logger)

	return out
}

// Compiler compiles records into shading graphs. It is safe for concurrent
// use when its loaders are.
type Compiler struct {
	materials MaterialLoader
	opts      Options
}

// New creates a compiler resolving nested references through materials.
func New(materials MaterialLoader, opt *Options) *Compiler {
	return &Compiler{materials: materials, opts: opt.normalize()}
}

// Result is one compiled material.
type Result struct {
	Graph  *graph.Graph   `json:"graph" yaml:"graph"`
	Output *SocketOutputs `json:"output" yaml:"output"` // nil when the material compiles to nothing
}

// Compile compiles m into a fresh graph. A nil record yields an empty graph
// and a nil output. On error the partially built graph is discarded.
func (c *Compiler) Compile(ctx context.Context, m umat.Material) (*Result, error) {
	s := c.newSession(ctx)
	out, err := s.compile(m, SocketInputs{})
	if err != nil {
		return nil, err
	}

	return &Result{Graph: s.g, Output: out}, nil
}

// CompileRef loads ref and compiles it.
func (c *Compiler) CompileRef(ctx context.Context, ref umat.Reference) (*Result, error) {
	s := c.newSession(ctx)
	out, err := s.load(&ref, SocketInputs{})
	if err != nil {
		return nil, err
	}

	return &Result{Graph: s.g, Output: out}, nil
}

// Supported reports whether typeName has a compile rule.
func Supported(typeName string) bool {
	_, ok := rules[typeName]
	return ok
}

// SupportedTypes returns the type names with a compile rule, sorted.
func SupportedTypes() []string {
	out := make([]string, 0, len(rules))
	for name := range rules {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// session is the state of one Compile call.
type session struct {
	ctx   context.Context
	c     *Compiler
	g     *graph.Graph
	log   *slog.Logger
	stack []string // References being compiled, outermost first
}

func (c *Compiler) newSession(ctx context.Context) *session {
	return &session{ctx: ctx, c: c, g: graph.New(), log: c.opts.Logger}
}

// load resolves ref and compiles the record. Unresolved references yield nil.
func (s *session) load(ref *umat.Reference, in SocketInputs) (*SocketOutputs, error) {
	if ref == nil {
		return nil, nil
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	m, err := s.c.materials.Load(s.ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	if m == nil {
		s.log.Debug("material not found", "ref", ref.String())
		return nil, nil
	}

	return s.compile(m, in)
}

// compile dispatches m to its rule.
func (s *session) compile(m umat.Material, in SocketInputs) (*SocketOutputs, error) {
	if m == nil {
		return nil, nil
	}

	key := m.Ref().String()
	if i := slices.Index(s.stack, key); i >= 0 {
		chain := append(slices.Clone(s.stack[i:]), key)
		return nil, fmt.Errorf("%w: %s", ErrCyclicReference, strings.Join(chain, " -> "))
	}
	if len(s.stack) >= s.c.opts.MaxDepth {
		return nil, fmt.Errorf("%w: %d levels at %s", ErrMaxDepth, len(s.stack), key)
	}

	r, ok := rules[m.TypeName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s (%T)", ErrUnsupportedMaterialType, m.TypeName(), m)
	}

	s.stack = append(s.stack, key)
	defer func() { s.stack = s.stack[:len(s.stack)-1] }()

	s.log.Debug("compiling material", "type", m.TypeName(), "ref", key, "depth", len(s.stack))
	out, err := r(s, m, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	return out, nil
}

// image loads the pixels exported for ref. Failures are logged and yield an
// image without pixels.
func (s *session) image(ref umat.Reference) *graph.Image {
	if s.c.opts.Images == nil {
		return graph.NewImage(ref.ObjectName, nil)
	}
	px, err := s.c.opts.Images.LoadImage(s.ctx, ref)
	if err != nil {
		s.log.Warn("image load failed", "ref", ref.String(), "err", err)
		return graph.NewImage(ref.ObjectName, nil)
	}
	return graph.NewImage(ref.ObjectName, px)
}

// rule compiles one record type.
type rule func(s *session, m umat.Material, in SocketInputs) (*SocketOutputs, error)

// typed adapts a rule for one concrete record type. Records that claim the
// type name without being that type are unsupported.
func typed[T umat.Material](fn func(*session, T, SocketInputs) (*SocketOutputs, error)) rule {
	return func(s *session, m umat.Material, in SocketInputs) (*SocketOutputs, error) {
		t, ok := m.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %s (%T)", ErrUnsupportedMaterialType, m.TypeName(), m)
		}
		return fn(s, t, in)
	}
}

var rules map[string]rule

func init() {
	rules = map[string]rule{
		"ConstantColor":     typed(compileConstantColor),
		"FadeColor":         typed(compileFadeColor),
		"Texture":           typed(compileTexture),
		"Cubemap":           typed(compileCubemap),
		"Shader":            typed(compileShader),
		"FinalBlend":        typed(compileFinalBlend),
		"ColorModifier":     typed(compileColorModifier),
		"OpacityModifier":   typed(compileOpacityModifier),
		"Combiner":          typed(compileCombiner),
		"TexCoordSource":    typed(compileTexCoordSource),
		"TexEnvMap":         typed(compileTexEnvMap),
		"TexOscillator":     typed(compileTexOscillator),
		"TexPanner":         typed(compileTexPanner),
		"TexRotator":        typed(compileTexRotator),
		"TexScaler":         typed(compileTexScaler),
		"VariableTexPanner": typed(compileVariableTexPanner),
		"VertexColor":       typed(compileVertexColor),
		"MaterialSwitch":    typed(compileMaterialSwitch),
		"MaterialSequence":  typed(compileMaterialSequence),
	}
}
