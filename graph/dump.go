package graph

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Encode writes the graph as YAML.
func (g *Graph) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return err
	}
	return enc.Close()
}
