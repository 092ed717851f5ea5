// Package graph is an arena of shading nodes built by the material compiler.
//
// Nodes are appended and never removed; a Socket names one output of one node
// and is what the compiler passes around as a channel handle. The graph can be
// dumped to YAML and evaluated at a point in time for inspection and tests.
package graph

import (
	"fmt"
	"image"
	"slices"
	"strconv"
	"strings"
)

// NodeID identifies a node inside one graph. IDs start at 1.
type NodeID int

// Socket is one output of one node. The zero Socket is unset.
type Socket struct {
	Node   NodeID
	Output string
}

// Valid reports whether the socket points at a node.
func (s Socket) Valid() bool { return s.Node > 0 }

// String renders the socket as "id:output".
func (s Socket) String() string {
	if !s.Valid() {
		return ""
	}
	return strconv.Itoa(int(s.Node)) + ":" + s.Output
}

// MarshalText implements encoding.TextMarshaler.
func (s Socket) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Vec is a color (RGBA), vector (XYZ) or scalar (first component) value.
type Vec [4]float64

// Input is the value feeding a node input: a link to another node's output
// or, when unlinked, a constant.
type Input struct {
	Link    Socket    `json:"link,omitempty" yaml:"link,omitempty"`
	Default []float64 `json:"default,omitempty" yaml:"default,flow,omitempty"`
}

// Link returns an input linked to s. An unset socket yields an empty input.
func Link(s Socket) Input { return Input{Link: s} }

// Const returns a constant input.
func Const(v ...float64) Input { return Input{Default: v} }

// IsSet reports whether the input is linked or has a constant.
func (in Input) IsSet() bool { return in.Link.Valid() || len(in.Default) > 0 }

// Kind is the node type.
type Kind string

// Node kinds.
const (
	KindConstantColor      Kind = "ConstantColor"
	KindValue              Kind = "Value"
	KindSignal             Kind = "Signal"
	KindMix                Kind = "Mix"
	KindMath               Kind = "Math"
	KindVectorMath         Kind = "VectorMath"
	KindVectorRotate       Kind = "VectorRotate"
	KindCombineXYZ         Kind = "CombineXYZ"
	KindSeparateXYZ        Kind = "SeparateXYZ"
	KindUVMap              Kind = "UVMap"
	KindTexCoord           Kind = "TexCoord"
	KindGeometry           Kind = "Geometry"
	KindAttribute          Kind = "Attribute"
	KindImageTexture       Kind = "ImageTexture"
	KindEnvironmentTexture Kind = "EnvironmentTexture"
	KindHueSaturation      Kind = "HueSaturation"
	KindReroute            Kind = "Reroute"
)

// Operations of Mix, Math and VectorMath nodes.
const (
	OpMix      = "Mix"
	OpAdd      = "Add"
	OpSubtract = "Subtract"
	OpMultiply = "Multiply"
	OpDivide   = "Divide"
	OpScale    = "Scale"
	OpFloor    = "Floor"
	OpModulo   = "Modulo" // Floored modulo, result has the sign of B
	OpCompare  = "Compare"
	OpGreater  = "GreaterThan"
	OpMaximum  = "Maximum"
	OpMinimum  = "Minimum"
	OpSine     = "Sine"
)

// Extension is the image addressing mode outside [0,1].
type Extension string

// Image extension modes.
const (
	ExtensionRepeat Extension = "REPEAT"
	ExtensionExtend Extension = "EXTEND"
)

// Image is a decoded texture attached to an image node.
type Image struct {
	Name   string      `json:"name" yaml:"name"`
	Width  int         `json:"width" yaml:"width"`
	Height int         `json:"height" yaml:"height"`
	Pixels image.Image `json:"-" yaml:"-"`
}

// NewImage wraps decoded pixels. px may be nil when the image could not be loaded.
func NewImage(name string, px image.Image) *Image {
	img := &Image{Name: name, Pixels: px}
	if px != nil {
		b := px.Bounds()
		img.Width, img.Height = b.Dx(), b.Dy()
	}
	return img
}

// Node is one shading operation.
type Node struct {
	ID        NodeID           `json:"id" yaml:"id"`
	Kind      Kind             `json:"kind" yaml:"kind"`
	Op        string           `json:"op,omitempty" yaml:"op,omitempty"`
	Label     string           `json:"label,omitempty" yaml:"label,omitempty"`
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"` // UV set or attribute name
	Clamp     bool             `json:"clamp,omitempty" yaml:"clamp,omitempty"`
	Color     *Vec             `json:"color,omitempty" yaml:"color,flow,omitempty"`
	Value     float64          `json:"value,omitempty" yaml:"value,omitempty"`
	Signal    *Signal          `json:"signal,omitempty" yaml:"signal,omitempty"`
	Image     *Image           `json:"image,omitempty" yaml:"image,omitempty"`
	Extension Extension        `json:"extension,omitempty" yaml:"extension,omitempty"`
	Inputs    map[string]Input `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// Out returns the named output socket of n.
func (n *Node) Out(output string) Socket { return Socket{Node: n.ID, Output: output} }

// Graph is an append-only arena of nodes.
type Graph struct {
	Nodes []*Node `json:"nodes" yaml:"nodes"`
}

// New returns an empty graph.
func New() *Graph { return &Graph{} }

// Add appends n, assigning its ID, and returns the stored node.
func (g *Graph) Add(n Node) *Node {
	n.ID = NodeID(len(g.Nodes) + 1)
	if n.Inputs == nil {
		n.Inputs = map[string]Input{}
	}
	p := &n
	g.Nodes = append(g.Nodes, p)
	return p
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id <= 0 || int(id) > len(g.Nodes) {
		return nil
	}
	return g.Nodes[id-1]
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }

// SetInput sets one input of node id. Unset inputs are ignored.
func (g *Graph) SetInput(id NodeID, name string, in Input) error {
	n := g.Node(id)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if in.Link.Valid() && g.Node(in.Link.Node) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, in.Link.Node)
	}
	if !in.IsSet() {
		return nil
	}
	n.Inputs[name] = in
	return nil
}

// Counts returns the number of nodes per kind, sorted by kind.
func (g *Graph) Counts() []KindCount {
	m := map[Kind]int{}
	for _, n := range g.Nodes {
		m[n.Kind]++
	}
	out := make([]KindCount, 0, len(m))
	for k, c := range m {
		out = append(out, KindCount{Kind: k, Count: c})
	}
	slices.SortFunc(out, func(a, b KindCount) int { return strings.Compare(string(a.Kind), string(b.Kind)) })
	return out
}

// KindCount is one row of Counts.
type KindCount struct {
	Kind  Kind `json:"kind" yaml:"kind"`
	Count int  `json:"count" yaml:"count"`
}

func (g *Graph) add(kind Kind, op string, inputs map[string]Input) *Node {
	n := g.Add(Node{Kind: kind, Op: op})
	for name, in := range inputs {
		if in.IsSet() {
			n.Inputs[name] = in
		}
	}
	return n
}

// ConstantColor adds a constant RGBA color in [0,1] and returns its Color output.
func (g *Graph) ConstantColor(c Vec) Socket {
	n := g.Add(Node{Kind: KindConstantColor, Color: &c})
	return n.Out("Color")
}

// Value adds a constant scalar.
func (g *Graph) Value(v float64) Socket {
	n := g.Add(Node{Kind: KindValue, Value: v})
	return n.Out("Value")
}

// Signal adds a time-driven scalar.
func (g *Graph) Signal(s Signal) Socket {
	n := g.Add(Node{Kind: KindSignal, Signal: &s})
	return n.Out("Value")
}

// Mix adds a color mix. op is one of OpMix, OpMultiply, OpAdd and OpSubtract.
// The node exposes Result and its fourth channel as Alpha.
func (g *Graph) Mix(op string, clamp bool, fac, a, b Input) *Node {
	n := g.add(KindMix, op, map[string]Input{"Fac": fac, "A": a, "B": b})
	n.Clamp = clamp
	return n
}

// Math adds a scalar operation.
func (g *Graph) Math(op string, a, b Input) Socket {
	return g.add(KindMath, op, map[string]Input{"A": a, "B": b}).Out("Value")
}

// VectorMath adds a vector operation. OpScale multiplies A by the scalar B.
func (g *Graph) VectorMath(op string, a, b Input) Socket {
	return g.add(KindVectorMath, op, map[string]Input{"A": a, "B": b}).Out("Vector")
}

// VectorRotate rotates vector around center by XYZ Euler angles in radians.
func (g *Graph) VectorRotate(vector, center, rotation Input) Socket {
	return g.add(KindVectorRotate, "", map[string]Input{"Vector": vector, "Center": center, "Rotation": rotation}).Out("Vector")
}

// CombineXYZ builds a vector from scalars.
func (g *Graph) CombineXYZ(x, y, z Input) Socket {
	return g.add(KindCombineXYZ, "", map[string]Input{"X": x, "Y": y, "Z": z}).Out("Vector")
}

// SeparateXYZ splits a vector into its X, Y and Z outputs.
func (g *Graph) SeparateXYZ(vector Input) *Node {
	return g.add(KindSeparateXYZ, "", map[string]Input{"Vector": vector})
}

// UVMap adds a named UV set source.
func (g *Graph) UVMap(name string) Socket {
	n := g.Add(Node{Kind: KindUVMap, Name: name})
	return n.Out("UV")
}

// TexCoord adds a texture-coordinate source and returns the named output
// (UV, Camera, Reflection).
func (g *Graph) TexCoord(output string) Socket {
	return g.Add(Node{Kind: KindTexCoord}).Out(output)
}

// Geometry adds a geometry source and returns the named output (Position, Normal).
func (g *Graph) Geometry(output string) Socket {
	return g.Add(Node{Kind: KindGeometry}).Out(output)
}

// Attribute adds a mesh attribute source. Outputs are Color and Alpha.
func (g *Graph) Attribute(name string) *Node {
	return g.Add(Node{Kind: KindAttribute, Name: name})
}

// ImageTexture adds an image sampler. Outputs are Color and Alpha.
// An unset vector samples the primary UV set.
func (g *Graph) ImageTexture(img *Image, ext Extension, vector Input) *Node {
	n := g.add(KindImageTexture, "", map[string]Input{"Vector": vector})
	n.Image = img
	n.Extension = ext
	return n
}

// EnvironmentTexture adds an equirectangular environment sampler driven by a direction.
func (g *Graph) EnvironmentTexture(img *Image, vector Input) Socket {
	n := g.add(KindEnvironmentTexture, "", map[string]Input{"Vector": vector})
	n.Image = img
	return n.Out("Color")
}

// HueSaturation adjusts color in HSV space.
func (g *Graph) HueSaturation(hue, saturation, value, fac, color Input) Socket {
	return g.add(KindHueSaturation, "", map[string]Input{
		"Hue": hue, "Saturation": saturation, "Value": value, "Fac": fac, "Color": color,
	}).Out("Color")
}

// Reroute adds a pass-through node whose Input can be linked later.
func (g *Graph) Reroute() *Node {
	return g.Add(Node{Kind: KindReroute})
}
