package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/cache"
	"github.com/woozymasta/umat/compiler"
	"github.com/woozymasta/umat/imageload"
	"github.com/woozymasta/umat/internal/config"
	"github.com/woozymasta/umat/manifest"
)

// errPropsOutput is returned by commands that cannot print property text.
var errPropsOutput = errors.New("props output is only supported by read")

// env is the per-invocation state shared by commands.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

// getEnv returns the environment stored by the root command.
func getEnv(cmd *cobra.Command) *env {
	if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
		return e
	}
	cfg, _, err := config.Load("", nil)
	if err != nil {
		cfg = &config.Config{Root: ".", Output: config.OutputYAML, Jobs: 1}
	}
	return &env{cfg: cfg, log: umat.Logger()}
}

// openCache builds a fresh cache over the configured repository.
func (e *env) openCache() (*cache.Cache, error) {
	m, err := manifest.Load(e.cfg.Root, e.cfg.Manifest)
	if err != nil {
		return nil, err
	}
	e.log.Debug("package table loaded", "packages", m.Len(), "root", e.cfg.Root)

	return cache.New(&cache.Options{
		Root:     e.cfg.Root,
		Packages: m.Packages,
		Logger:   e.log,
	}), nil
}

// newCompiler builds a compiler loading records and images through c.
func (e *env) newCompiler(c *cache.Cache) *compiler.Compiler {
	return compiler.New(c, &compiler.Options{
		Images:   imageload.New(c, &imageload.Options{Logger: e.log}),
		MaxDepth: e.cfg.MaxDepth,
		Logger:   e.log,
	})
}

// parseRefs parses type-qualified references.
func parseRefs(args []string) ([]umat.Reference, error) {
	refs := make([]umat.Reference, 0, len(args))
	for _, arg := range args {
		ref := umat.ParseReference(arg)
		if ref == nil || ref.TypeName == "" {
			return nil, fmt.Errorf("%w: %q, want Type'Package.Object'", umat.ErrInvalidReference, arg)
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}

// writeDoc writes v as YAML or JSON.
func writeDoc(w io.Writer, format string, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputProps:
		return errPropsOutput
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// recordNode converts a record to an ordered YAML document, flattening
// embedded structs the way encoding/json does.
func recordNode(m umat.Material) (*yaml.Node, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		return doc.Content[0], nil
	}
	return &doc, nil
}

// blockStyle drops the flow and quoting styles the JSON input left on n.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
