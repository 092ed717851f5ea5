package compiler

import (
	"math"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/graph"
)

func compileConstantColor(s *session, m *umat.ConstantColor, _ SocketInputs) (*SocketOutputs, error) {
	out := newOutputs()
	out.Color = s.g.ConstantColor(colorVec(m.Color))
	return out, nil
}

func compileFadeColor(s *session, m *umat.FadeColor, _ SocketInputs) (*SocketOutputs, error) {
	c1 := s.g.ConstantColor(colorVec(m.Color1))
	c2 := s.g.ConstantColor(colorVec(m.Color2))

	var fac graph.Signal
	switch {
	case m.FadePeriod <= 0:
		fac = graph.Constant(0)
	case m.ColorFadeType == umat.FCSinusoidal:
		// (cos(phase + w*t) + 1) / 2
		w := 2 * math.Pi / m.FadePeriod
		fac = graph.Sine(0.5, 0.5, w, w*m.FadeOffset+math.Pi/2)
	default:
		fac = graph.Triangle(m.FadePeriod, m.FadeOffset)
	}

	mix := s.g.Mix(graph.OpMix, false, graph.Link(s.g.Signal(fac)), graph.Link(c1), graph.Link(c2))
	out := newOutputs()
	out.Color = mix.Out("Result")
	out.Alpha = mix.Out("Alpha")
	return out, nil
}

// clampExtension maps a texture clamp mode onto image addressing.
func clampExtension(mode umat.TexClampMode) graph.Extension {
	if mode == umat.TCClamp {
		return graph.ExtensionExtend
	}
	return graph.ExtensionRepeat
}

func compileTexture(s *session, m *umat.Texture, in SocketInputs) (*SocketOutputs, error) {
	if m.Ref().IsZero() {
		return &SocketOutputs{}, nil
	}

	tex := s.g.ImageTexture(s.image(m.Ref()), clampExtension(m.UClampMode), graph.Link(in.ActiveUV()))
	color, err := s.detail(tex.Out("Color"), m.Detail, m.DetailScale, in)
	if err != nil {
		return nil, err
	}

	out := newOutputs()
	out.Color = color
	if m.AlphaTexture || m.Masked {
		out.Alpha = tex.Out("Alpha")
	}
	switch {
	case m.Masked:
		out.BlendMode = BlendClip
	case m.AlphaTexture:
		out.BlendMode = BlendBlend
	}
	out.UseBackfaceCulling = !m.TwoSided
	out.Size = [2]int{m.UClamp, m.VClamp}
	return out, nil
}

// detail multiplies a hue/saturation boosted detail material into color,
// sampling the detail with the UV scaled by scale.
func (s *session) detail(color graph.Socket, ref *umat.Reference, scale float64, in SocketInputs) (graph.Socket, error) {
	if ref == nil || !color.Valid() {
		return color, nil
	}

	uv := s.g.VectorMath(graph.OpScale, graph.Link(s.baseUV(in)), graph.Const(scale))
	d, err := s.load(ref, SocketInputs{UVSource: in.UVSource, UV: uv})
	if err != nil || d == nil || !d.Color.Valid() {
		return color, err
	}

	boosted := s.g.HueSaturation(graph.Const(0.5), graph.Const(1), graph.Const(2), graph.Const(1), graph.Link(d.Color))
	return s.g.Mix(graph.OpMultiply, true, graph.Const(1), graph.Link(color), graph.Link(boosted)).Out("Result"), nil
}

func compileCubemap(s *session, m *umat.Cubemap, in SocketInputs) (*SocketOutputs, error) {
	if m.Ref().IsZero() {
		return &SocketOutputs{}, nil
	}

	dir := in.ActiveUV()
	if !dir.Valid() {
		dir = s.g.TexCoord("Reflection")
	}

	out := newOutputs()
	out.Color = s.g.EnvironmentTexture(s.image(m.Ref()), graph.Link(dir))
	out.UseBackfaceCulling = !m.TwoSided
	out.Size = [2]int{m.UClamp, m.VClamp}
	return out, nil
}

func compileShader(s *session, m *umat.Shader, in SocketInputs) (*SocketOutputs, error) {
	out := newOutputs()

	opacity, err := s.load(m.Opacity, in)
	if err != nil {
		return nil, err
	}
	if opacity != nil {
		out.Alpha = alphaOrColor(opacity)
	}
	if out.Alpha.Valid() {
		out.BlendMode = BlendBlend
		if m.OutputBlending == umat.OBMasked {
			out.BlendMode = BlendClip
		}
	}

	diffuse, err := s.load(m.Diffuse, in)
	if err != nil {
		return nil, err
	}
	if diffuse != nil {
		out.Color = diffuse.Color
		out.UseBackfaceCulling = diffuse.UseBackfaceCulling
		out.Size = diffuse.Size
		if out.Color, err = s.detail(out.Color, m.Detail, m.DetailScale, in); err != nil {
			return nil, err
		}
	}
	if m.TwoSided {
		out.UseBackfaceCulling = false
	}

	specular, err := s.maskedTerm(m.Specular, m.SpecularityMask, in)
	if err != nil {
		return nil, err
	}
	out.Color = s.add(out.Color, specular)

	glow, err := s.maskedTerm(m.SelfIllumination, m.SelfIlluminationMask, in)
	if err != nil {
		return nil, err
	}
	out.Color = s.add(out.Color, glow)

	return out, nil
}

// maskedTerm compiles an additive shader term and applies its optional mask.
func (s *session) maskedTerm(ref, maskRef *umat.Reference, in SocketInputs) (graph.Socket, error) {
	term, err := s.load(ref, in)
	if err != nil || term == nil || !term.Color.Valid() {
		return graph.Socket{}, err
	}
	mask, err := s.load(maskRef, in)
	if err != nil {
		return graph.Socket{}, err
	}
	return s.masked(term.Color, mask), nil
}

func compileFinalBlend(s *session, m *umat.FinalBlend, in SocketInputs) (*SocketOutputs, error) {
	child, err := s.load(m.Material, in)
	if err != nil || child == nil {
		return nil, err
	}
	out := child.clone()
	out.UseBackfaceCulling = !m.TwoSided
	return out, nil
}

func compileColorModifier(s *session, m *umat.ColorModifier, in SocketInputs) (*SocketOutputs, error) {
	child, err := s.load(m.Material, in)
	if err != nil || child == nil {
		return nil, err
	}

	out := child.clone()
	if child.Color.Valid() {
		out.Color = s.multiply(child.Color, s.g.ConstantColor(colorVec(m.Color)))
	}
	if m.AlphaBlend {
		a := s.g.Value(float64(m.Color.A) / 255)
		if child.Alpha.Valid() {
			a = s.g.Math(graph.OpMultiply, graph.Link(child.Alpha), graph.Link(a))
		}
		out.Alpha = a
		if out.BlendMode == BlendOpaque {
			out.BlendMode = BlendBlend
		}
	}
	if m.RenderTwoSided {
		out.UseBackfaceCulling = false
	}
	return out, nil
}

func compileOpacityModifier(s *session, m *umat.OpacityModifier, in SocketInputs) (*SocketOutputs, error) {
	child, err := s.load(m.Material, in)
	if err != nil || child == nil {
		return nil, err
	}
	opacity, err := s.load(m.Opacity, in)
	if err != nil {
		return nil, err
	}

	out := child.clone()
	if opacity != nil && alphaOrColor(opacity).Valid() {
		out.Alpha = alphaOrColor(opacity)
		out.BlendMode = BlendBlend
	}
	return out, nil
}

func compileVertexColor(s *session, _ *umat.VertexColor, _ SocketInputs) (*SocketOutputs, error) {
	attr := s.g.Attribute("Col")
	out := newOutputs()
	out.Color = attr.Out("Color")
	out.Alpha = attr.Out("Alpha")
	return out, nil
}
