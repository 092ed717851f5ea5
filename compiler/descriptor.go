package compiler

import (
	"fmt"

	"github.com/woozymasta/umat/graph"
)

// BlendMode is how a compiled material is composited.
type BlendMode uint8

// Blend modes.
const (
	BlendOpaque BlendMode = iota
	BlendClip
	BlendBlend
)

var blendModeNames = [...]string{"OPAQUE", "CLIP", "BLEND"}

// String returns the blend mode name.
func (b BlendMode) String() string {
	if int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", b)
}

// MarshalText implements encoding.TextMarshaler.
func (b BlendMode) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// SocketInputs carries the active UV channels down the recursion.
// It is passed by value so sibling branches never see each other's rewiring.
type SocketInputs struct {
	UVSource graph.Socket `json:"uvSource,omitempty" yaml:"uvSource,omitempty"`
	UV       graph.Socket `json:"uv,omitempty" yaml:"uv,omitempty"`
}

// ActiveUV returns UV when set and UVSource otherwise.
func (in SocketInputs) ActiveUV() graph.Socket {
	if in.UV.Valid() {
		return in.UV
	}
	return in.UVSource
}

// SocketOutputs describes what a compiled material produces.
type SocketOutputs struct {
	Color              graph.Socket `json:"color,omitempty" yaml:"color,omitempty"`
	Alpha              graph.Socket `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	BlendMode          BlendMode    `json:"blendMode" yaml:"blendMode"`
	UseBackfaceCulling bool         `json:"useBackfaceCulling" yaml:"useBackfaceCulling"`
	Size               [2]int       `json:"size" yaml:"size,flow"`
}

// newOutputs returns an opaque, one-sided descriptor of nominal size 1x1.
func newOutputs() *SocketOutputs {
	return &SocketOutputs{BlendMode: BlendOpaque, UseBackfaceCulling: true, Size: [2]int{1, 1}}
}

// clone returns a copy of o.
func (o *SocketOutputs) clone() *SocketOutputs {
	c := *o
	return &c
}
