package graph

import (
	"fmt"
	"image/color"
	"math"
)

// PrimaryUVSet is the name of the first UV set of imported meshes.
const PrimaryUVSet = "VTXW0000"

// EvalContext is the point at which a graph is sampled.
type EvalContext struct {
	Time        float64               // Scene time in seconds
	WallTime    float64               // Wall-clock time in seconds
	UV          map[string][2]float64 // UV coordinates per set name
	VertexColor Vec                   // Mesh vertex color, RGBA
	Position    Vec                   // World-space position
	Normal      Vec                   // World-space normal
	Camera      Vec                   // Camera-space position
	Reflection  Vec                   // Reflection direction
}

// Evaluate computes the value of socket s.
// Scalar outputs are returned in the first component.
func Evaluate(g *Graph, s Socket, ctx EvalContext) (Vec, error) {
	e := &evaluator{g: g, ctx: ctx, memo: map[NodeID]map[string]Vec{}, active: map[NodeID]bool{}}
	return e.socket(s)
}

type evaluator struct {
	g      *Graph
	ctx    EvalContext
	memo   map[NodeID]map[string]Vec
	active map[NodeID]bool
}

func (e *evaluator) socket(s Socket) (Vec, error) {
	n := e.g.Node(s.Node)
	if n == nil {
		return Vec{}, fmt.Errorf("%w: %d", ErrUnknownNode, s.Node)
	}
	outs, ok := e.memo[n.ID]
	if !ok {
		if e.active[n.ID] {
			return Vec{}, fmt.Errorf("%w at node %d", ErrEvalCycle, n.ID)
		}
		e.active[n.ID] = true
		var err error
		outs, err = e.node(n)
		delete(e.active, n.ID)
		if err != nil {
			return Vec{}, err
		}
		e.memo[n.ID] = outs
	}

	v, ok := outs[s.Output]
	if !ok {
		return Vec{}, fmt.Errorf("%w: %s has no %q", ErrUnknownOutput, n.Kind, s.Output)
	}
	return v, nil
}

// input returns the value feeding name, or def when the input is unset.
func (e *evaluator) input(n *Node, name string, def Vec) (Vec, error) {
	in, ok := n.Inputs[name]
	if !ok {
		return def, nil
	}
	if in.Link.Valid() {
		return e.socket(in.Link)
	}
	var v Vec
	copy(v[:], in.Default)
	return v, nil
}

func (e *evaluator) inputs(n *Node, names []string, defs []Vec) ([]Vec, error) {
	out := make([]Vec, len(names))
	for i, name := range names {
		v, err := e.input(n, name, defs[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *evaluator) uv(name string) Vec {
	uv := e.ctx.UV[name]
	return Vec{uv[0], uv[1], 0, 0}
}

func scalar(v float64) Vec { return Vec{v} }

func (e *evaluator) node(n *Node) (map[string]Vec, error) {
	switch n.Kind {
	case KindConstantColor:
		c := *n.Color
		return map[string]Vec{"Color": c, "Alpha": scalar(c[3])}, nil

	case KindValue:
		return map[string]Vec{"Value": scalar(n.Value)}, nil

	case KindSignal:
		t := e.ctx.Time
		if n.Signal.Clock == ClockWall {
			t = e.ctx.WallTime
		}
		return map[string]Vec{"Value": scalar(n.Signal.Eval(t))}, nil

	case KindMix:
		in, err := e.inputs(n, []string{"Fac", "A", "B"}, []Vec{scalar(1), {}, {}})
		if err != nil {
			return nil, err
		}
		r := mix(n.Op, in[0][0], in[1], in[2])
		if n.Clamp {
			for i := range r {
				r[i] = clamp01(r[i])
			}
		}
		return map[string]Vec{"Result": r, "Alpha": scalar(r[3])}, nil

	case KindMath:
		in, err := e.inputs(n, []string{"A", "B"}, []Vec{{}, {}})
		if err != nil {
			return nil, err
		}
		v := math1(n.Op, in[0][0], in[1][0])
		if n.Clamp {
			v = clamp01(v)
		}
		return map[string]Vec{"Value": scalar(v)}, nil

	case KindVectorMath:
		in, err := e.inputs(n, []string{"A", "B"}, []Vec{{}, {}})
		if err != nil {
			return nil, err
		}
		var r Vec
		for i := range 3 {
			a, b := in[0][i], in[1][i]
			switch n.Op {
			case OpAdd:
				r[i] = a + b
			case OpSubtract:
				r[i] = a - b
			case OpMultiply:
				r[i] = a * b
			case OpDivide:
				r[i] = safeDiv(a, b)
			case OpScale:
				r[i] = a * in[1][0]
			}
		}
		return map[string]Vec{"Vector": r}, nil

	case KindVectorRotate:
		in, err := e.inputs(n, []string{"Vector", "Center", "Rotation"}, []Vec{{}, {}, {}})
		if err != nil {
			return nil, err
		}
		return map[string]Vec{"Vector": rotateEuler(in[0], in[1], in[2])}, nil

	case KindCombineXYZ:
		in, err := e.inputs(n, []string{"X", "Y", "Z"}, []Vec{{}, {}, {}})
		if err != nil {
			return nil, err
		}
		return map[string]Vec{"Vector": {in[0][0], in[1][0], in[2][0]}}, nil

	case KindSeparateXYZ:
		v, err := e.input(n, "Vector", Vec{})
		if err != nil {
			return nil, err
		}
		return map[string]Vec{"X": scalar(v[0]), "Y": scalar(v[1]), "Z": scalar(v[2])}, nil

	case KindUVMap:
		return map[string]Vec{"UV": e.uv(n.Name)}, nil

	case KindTexCoord:
		return map[string]Vec{
			"UV":         e.uv(PrimaryUVSet),
			"Camera":     e.ctx.Camera,
			"Reflection": e.ctx.Reflection,
		}, nil

	case KindGeometry:
		return map[string]Vec{"Position": e.ctx.Position, "Normal": e.ctx.Normal}, nil

	case KindAttribute:
		c := e.ctx.VertexColor
		return map[string]Vec{"Color": c, "Alpha": scalar(c[3])}, nil

	case KindImageTexture:
		v, err := e.input(n, "Vector", e.uv(PrimaryUVSet))
		if err != nil {
			return nil, err
		}
		c := sample(n.Image, n.Extension, v[0], v[1])
		return map[string]Vec{"Color": c, "Alpha": scalar(c[3])}, nil

	case KindEnvironmentTexture:
		d, err := e.input(n, "Vector", Vec{})
		if err != nil {
			return nil, err
		}
		u, v := equirect(d)
		return map[string]Vec{"Color": sample(n.Image, ExtensionRepeat, u, v)}, nil

	case KindHueSaturation:
		in, err := e.inputs(n, []string{"Hue", "Saturation", "Value", "Fac", "Color"},
			[]Vec{scalar(0.5), scalar(1), scalar(1), scalar(1), {}})
		if err != nil {
			return nil, err
		}
		return map[string]Vec{"Color": hueSaturation(in[0][0], in[1][0], in[2][0], in[3][0], in[4])}, nil

	case KindReroute:
		v, err := e.input(n, "Input", Vec{})
		if err != nil {
			return nil, err
		}
		return map[string]Vec{"Output": v}, nil

	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownNode, n.Kind)
	}
}

// mix applies a color blend to all four channels.
func mix(op string, f float64, a, b Vec) Vec {
	var r Vec
	for i := range r {
		switch op {
		case OpMultiply:
			r[i] = a[i] * (1 - f + f*b[i])
		case OpAdd:
			r[i] = a[i] + f*b[i]
		case OpSubtract:
			r[i] = a[i] - f*b[i]
		default:
			r[i] = a[i]*(1-f) + b[i]*f
		}
	}
	return r
}

func math1(op string, a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	case OpMultiply:
		return a * b
	case OpDivide:
		return safeDiv(a, b)
	case OpFloor:
		return math.Floor(a)
	case OpModulo:
		if b == 0 {
			return 0
		}
		return a - b*math.Floor(a/b)
	case OpCompare:
		if math.Abs(a-b) <= 1e-6 {
			return 1
		}
		return 0
	case OpGreater:
		if a > b {
			return 1
		}
		return 0
	case OpMaximum:
		return math.Max(a, b)
	case OpMinimum:
		return math.Min(a, b)
	case OpSine:
		return math.Sin(a)
	default:
		return a
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// rotateEuler rotates v around c by XYZ Euler angles (X first, then Y, then Z).
func rotateEuler(v, c, rot Vec) Vec {
	x, y, z := v[0]-c[0], v[1]-c[1], v[2]-c[2]

	sx, cx := math.Sincos(rot[0])
	y, z = y*cx-z*sx, y*sx+z*cx

	sy, cy := math.Sincos(rot[1])
	x, z = x*cy+z*sy, -x*sy+z*cy

	sz, cz := math.Sincos(rot[2])
	x, y = x*cz-y*sz, x*sz+y*cz

	return Vec{x + c[0], y + c[1], z + c[2]}
}

// equirect maps a direction onto equirectangular UV.
func equirect(d Vec) (u, v float64) {
	l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if l == 0 {
		return 0.5, 0.5
	}
	x, y, z := d[0]/l, d[1]/l, d[2]/l
	u = math.Atan2(y, -x)/(2*math.Pi) + 0.5
	v = 0.5 - math.Atan2(z, math.Hypot(x, y))/math.Pi
	return u, v
}

// missingPixel is returned for images without pixels.
var missingPixel = Vec{1, 0, 1, 1}

// sample returns the nearest texel at (u, v), origin at the top-left corner.
func sample(img *Image, ext Extension, u, v float64) Vec {
	if img == nil || img.Pixels == nil || img.Width == 0 || img.Height == 0 {
		return missingPixel
	}
	x := texel(u, img.Width, ext)
	y := texel(v, img.Height, ext)
	b := img.Pixels.Bounds()
	c := color.NRGBAModel.Convert(img.Pixels.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
	return Vec{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}
}

func texel(t float64, size int, ext Extension) int {
	i := int(math.Floor(t * float64(size)))
	if ext == ExtensionExtend {
		return min(max(i, 0), size-1)
	}
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

// hueSaturation shifts hue by h-0.5, scales saturation and value, then
// blends with the input by fac.
func hueSaturation(h, s, v, fac float64, c Vec) Vec {
	hh, ss, vv := rgbToHSV(c[0], c[1], c[2])
	hh += h - 0.5
	hh -= math.Floor(hh)
	ss = clamp01(ss * s)
	vv *= v
	r, g, b := hsvToRGB(hh, ss, vv)
	return Vec{
		c[0] + (r-c[0])*fac,
		c[1] + (g-c[1])*fac,
		c[2] + (b-c[2])*fac,
		c[3],
	}
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	v = mx
	d := mx - mn
	if mx <= 0 || d == 0 {
		return 0, 0, v
	}
	s = d / mx
	switch mx {
	case r:
		h = (g - b) / d
	case g:
		h = 2 + (b-r)/d
	default:
		h = 4 + (r-g)/d
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	if s == 0 {
		return v, v, v
	}
	h *= 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
