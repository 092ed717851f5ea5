package compiler

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/graph"
	"github.com/woozymasta/umat/internal/testutil"
)

// memLoader resolves references by object path.
type memLoader map[string]umat.Material

func (l memLoader) Load(_ context.Context, ref *umat.Reference) (umat.Material, error) {
	if m, ok := l[ref.ObjectPath()]; ok {
		return m, nil
	}
	return nil, nil
}

func (l memLoader) add(ms ...umat.Material) memLoader {
	for _, m := range ms {
		ref := m.Ref()
		l[ref.ObjectPath()] = m
	}
	return l
}

type imageLoaderFunc func(ctx context.Context, ref umat.Reference) (image.Image, error)

func (f imageLoaderFunc) LoadImage(ctx context.Context, ref umat.Reference) (image.Image, error) {
	return f(ctx, ref)
}

func ref(s string) *umat.Reference {
	r := umat.MustParseReference(s)
	return &r
}

func constantColor(name string, r, g, b, a uint8) *umat.ConstantColor {
	m := umat.NewConstantColor()
	m.Reference = *ref("ConstantColor'Pkg." + name + "'")
	m.Color = umat.RGBA(r, g, b, a)
	return m
}

func texture(name string, u, v int) *umat.Texture {
	m := umat.NewTexture()
	m.Reference = *ref("Texture'Pkg." + name + "'")
	m.UClamp, m.VClamp = u, v
	return m
}

func newTestCompiler(t *testing.T, l memLoader, opt *Options) *Compiler {
	t.Helper()
	if opt == nil {
		opt = &Options{}
	}
	opt.Logger = testutil.NewTestLogger(t)
	return New(l, opt)
}

func compile(t *testing.T, l memLoader, m umat.Material) *Result {
	t.Helper()
	res, err := newTestCompiler(t, l, nil).Compile(context.Background(), m)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func eval(t *testing.T, res *Result, s graph.Socket, ctx graph.EvalContext) graph.Vec {
	t.Helper()
	v, err := graph.Evaluate(res.Graph, s, ctx)
	require.NoError(t, err)
	return v
}

// findNodes returns the nodes of kind k in creation order.
func findNodes(g *graph.Graph, k graph.Kind) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

func uvAt(u, v float64) graph.EvalContext {
	return graph.EvalContext{UV: map[string][2]float64{graph.PrimaryUVSet: {u, v}}}
}

func TestEveryRecordTypeHasRule(t *testing.T) {
	types := umat.MaterialTypes()
	for _, name := range types {
		assert.True(t, Supported(name), "no compile rule for %s", name)
	}
	assert.ElementsMatch(t, types, SupportedTypes())
}

type foreign struct{ umat.MaterialBase }

func (*foreign) TypeName() string { return "Foreign" }

type impostor struct{ umat.MaterialBase }

func (*impostor) TypeName() string { return "Texture" }

func TestUnsupportedMaterialType(t *testing.T) {
	c := newTestCompiler(t, memLoader{}, nil)

	_, err := c.Compile(context.Background(), &foreign{})
	require.ErrorIs(t, err, ErrUnsupportedMaterialType)

	res, err := c.Compile(context.Background(), &impostor{})
	require.ErrorIs(t, err, ErrUnsupportedMaterialType)
	assert.Nil(t, res)
}

func TestCompileNil(t *testing.T) {
	res := compile(t, memLoader{}, nil)
	assert.Nil(t, res.Output)
	assert.Zero(t, res.Graph.Len())
}

func TestCompileRefMissing(t *testing.T) {
	c := newTestCompiler(t, memLoader{}, nil)
	res, err := c.CompileRef(context.Background(), *ref("Shader'Pkg.Missing'"))
	require.NoError(t, err)
	assert.Nil(t, res.Output)
}

func TestCompileCanceled(t *testing.T) {
	l := memLoader{}.add(constantColor("Red", 255, 0, 0, 255))
	fb := umat.NewFinalBlend()
	fb.Reference = *ref("FinalBlend'Pkg.FB'")
	fb.Material = ref("ConstantColor'Pkg.Red'")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestCompiler(t, l, nil).Compile(ctx, fb)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConstantColor(t *testing.T) {
	res := compile(t, memLoader{}, constantColor("Red", 255, 0, 0, 255))
	out := res.Output
	require.NotNil(t, out)
	assert.False(t, out.Alpha.Valid())
	assert.Equal(t, BlendOpaque, out.BlendMode)
	assert.True(t, out.UseBackfaceCulling)
	assert.Equal(t, [2]int{1, 1}, out.Size)
	assert.Equal(t, graph.Vec{1, 0, 0, 1}, eval(t, res, out.Color, graph.EvalContext{}))
}

func TestFadeColor(t *testing.T) {
	tests := []struct {
		name          string
		kind          umat.ColorFadeType
		atZero, atOne float64
	}{
		{"linear", umat.FCLinear, 0, 1},
		{"sinusoidal", umat.FCSinusoidal, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := umat.NewFadeColor()
			m.Reference = *ref("FadeColor'Pkg.Fade'")
			m.Color1 = umat.RGBA(0, 0, 0, 255)
			m.Color2 = umat.RGBA(255, 255, 255, 255)
			m.FadePeriod = 2
			m.ColorFadeType = tt.kind

			res := compile(t, memLoader{}, m)
			require.True(t, res.Output.Alpha.Valid())

			c0 := eval(t, res, res.Output.Color, graph.EvalContext{Time: 0})
			c1 := eval(t, res, res.Output.Color, graph.EvalContext{Time: 1})
			assert.InDelta(t, tt.atZero, c0[0], 1e-9)
			assert.InDelta(t, tt.atOne, c1[0], 1e-9)
			assert.InDelta(t, 1, eval(t, res, res.Output.Alpha, graph.EvalContext{Time: 0.5})[0], 1e-9)
		})
	}
}

func TestTexture(t *testing.T) {
	tex := texture("Brick", 32, 64)
	tex.Masked = true
	tex.TwoSided = true
	tex.VClampMode = umat.TCClamp

	c := newTestCompiler(t, memLoader{}, &Options{
		Images: imageLoaderFunc(func(context.Context, umat.Reference) (image.Image, error) {
			return testutil.Checker(), nil
		}),
	})
	res, err := c.Compile(context.Background(), tex)
	require.NoError(t, err)

	out := res.Output
	assert.Equal(t, BlendClip, out.BlendMode)
	assert.False(t, out.UseBackfaceCulling)
	assert.Equal(t, [2]int{32, 64}, out.Size)
	require.True(t, out.Alpha.Valid())

	assert.Equal(t, graph.Vec{0, 1, 0, 1}, eval(t, res, out.Color, uvAt(0.75, 0.25)))
	assert.InDelta(t, 128.0/255, eval(t, res, out.Alpha, uvAt(0.75, 0.75))[0], 1e-9)
}

func TestTextureImageFailure(t *testing.T) {
	tex := texture("Brick", 16, 16)
	tex.AlphaTexture = true

	c := newTestCompiler(t, memLoader{}, &Options{
		Images: imageLoaderFunc(func(context.Context, umat.Reference) (image.Image, error) {
			return nil, errors.New("boom")
		}),
	})
	res, err := c.Compile(context.Background(), tex)
	require.NoError(t, err)
	assert.Equal(t, BlendBlend, res.Output.BlendMode)
	assert.Equal(t, graph.Vec{1, 0, 1, 1}, eval(t, res, res.Output.Color, uvAt(0, 0)))
}

func TestTextureWithoutReference(t *testing.T) {
	res := compile(t, memLoader{}, umat.NewTexture())
	assert.Equal(t, &SocketOutputs{}, res.Output)
}

func TestTextureDetail(t *testing.T) {
	detail := texture("Noise", 8, 8)
	tex := texture("Brick", 32, 32)
	tex.Detail = ref("Texture'Pkg.Noise'")
	tex.DetailScale = 4

	res := compile(t, memLoader{}.add(detail), tex)
	images := findNodes(res.Graph, graph.KindImageTexture)
	require.Len(t, images, 2)

	// The detail samples at 4x the primary UV.
	link := images[1].Inputs["Vector"].Link
	require.True(t, link.Valid())
	uv := eval(t, res, link, uvAt(0.1, 0.2))
	assert.InDelta(t, 0.4, uv[0], 1e-9)
	assert.InDelta(t, 0.8, uv[1], 1e-9)
	assert.Len(t, findNodes(res.Graph, graph.KindHueSaturation), 1)
}

func TestCubemap(t *testing.T) {
	cube := umat.NewCubemap()
	cube.Reference = *ref("Cubemap'Pkg.Sky'")
	res := compile(t, memLoader{}, cube)

	envs := findNodes(res.Graph, graph.KindEnvironmentTexture)
	require.Len(t, envs, 1)
	dir := envs[0].Inputs["Vector"].Link
	assert.Equal(t, graph.KindTexCoord, res.Graph.Node(dir.Node).Kind)
	assert.Equal(t, "Reflection", dir.Output)
	assert.False(t, res.Output.Alpha.Valid())
}

func TestCombinerModulate2X(t *testing.T) {
	tests := []struct {
		name  string
		level uint8
		want  float64
	}{
		{"saturates", 128, 1},
		{"doubles", 64, 128.0 / 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := memLoader{}.add(
				constantColor("Grey", tt.level, tt.level, tt.level, 255),
				constantColor("White", 255, 255, 255, 255),
			)
			m := umat.NewCombiner()
			m.Reference = *ref("Combiner'Pkg.Mix'")
			m.CombineOperation = umat.COMultiply
			m.Modulate2X = true
			m.Material1 = ref("ConstantColor'Pkg.Grey'")
			m.Material2 = ref("ConstantColor'Pkg.White'")

			res := compile(t, l, m)
			c := eval(t, res, res.Output.Color, graph.EvalContext{})
			for i := range 3 {
				assert.InDelta(t, tt.want, c[i], 1e-9)
			}
		})
	}
}

func TestCombinerMetadataPriority(t *testing.T) {
	l := memLoader{}.add(texture("Mask", 16, 8), constantColor("Red", 255, 0, 0, 255))
	m := umat.NewCombiner()
	m.Reference = *ref("Combiner'Pkg.Mix'")
	m.CombineOperation = umat.COAlphaBlendWithMask
	m.Material1 = ref("Texture'Pkg.Missing'")
	m.Material2 = ref("ConstantColor'Pkg.Red'")
	m.Mask = ref("Texture'Pkg.Mask'")

	res := compile(t, l, m)
	assert.Equal(t, [2]int{1, 1}, res.Output.Size)
	assert.Equal(t, graph.Vec{1, 0, 0, 1}, eval(t, res, res.Output.Color, graph.EvalContext{}))
}

func TestCombinerNothingResolved(t *testing.T) {
	m := umat.NewCombiner()
	m.Reference = *ref("Combiner'Pkg.Mix'")
	m.Material1 = ref("Texture'Pkg.A'")
	res := compile(t, memLoader{}, m)
	assert.Nil(t, res.Output)
}

func TestCombinerAlphaBlendInvert(t *testing.T) {
	// Mask alpha comes from the vertex color, 0.25 at evaluation time.
	vc := umat.NewVertexColor()
	vc.Reference = *ref("VertexColor'Pkg.VC'")
	l := memLoader{}.add(
		constantColor("Red", 255, 0, 0, 255),
		constantColor("Blue", 0, 0, 255, 255),
		vc,
	)

	m := umat.NewCombiner()
	m.Reference = *ref("Combiner'Pkg.Mix'")
	m.CombineOperation = umat.COAlphaBlendWithMask
	m.AlphaOperation = umat.AOUseMask
	m.Material1 = ref("ConstantColor'Pkg.Red'")
	m.Material2 = ref("ConstantColor'Pkg.Blue'")
	m.Mask = ref("VertexColor'Pkg.VC'")

	ctx := graph.EvalContext{VertexColor: graph.Vec{0, 0, 0, 0.25}}

	res := compile(t, l, m)
	c := eval(t, res, res.Output.Color, ctx)
	assert.InDelta(t, 0.75, c[0], 1e-9)
	assert.InDelta(t, 0.25, c[2], 1e-9)
	assert.InDelta(t, 0.25, eval(t, res, res.Output.Alpha, ctx)[0], 1e-9)

	m.InvertMask = true
	res = compile(t, l, m)
	c = eval(t, res, res.Output.Color, ctx)
	assert.InDelta(t, 0.25, c[0], 1e-9)
	assert.InDelta(t, 0.75, c[2], 1e-9)
}

func TestShaderUnresolvedOpacity(t *testing.T) {
	l := memLoader{}.add(
		constantColor("Base", 51, 51, 51, 255),
		constantColor("Spec", 25, 25, 25, 255),
	)
	m := umat.NewShader()
	m.Reference = *ref("Shader'Pkg.Wall'")
	m.Diffuse = ref("ConstantColor'Pkg.Base'")
	m.Specular = ref("ConstantColor'Pkg.Spec'")
	m.Opacity = ref("Texture'Pkg.Gone'")

	res := compile(t, l, m)
	out := res.Output
	assert.False(t, out.Alpha.Valid())
	assert.Equal(t, BlendOpaque, out.BlendMode)
	assert.InDelta(t, 76.0/255, eval(t, res, out.Color, graph.EvalContext{})[0], 1e-9)
}

func TestShaderOpacity(t *testing.T) {
	op := texture("Alpha", 16, 16)
	op.AlphaTexture = true
	diffuse := texture("Diffuse", 64, 32)
	diffuse.TwoSided = true
	l := memLoader{}.add(op, diffuse)

	m := umat.NewShader()
	m.Reference = *ref("Shader'Pkg.Glass'")
	m.Diffuse = ref("Texture'Pkg.Diffuse'")
	m.Opacity = ref("Texture'Pkg.Alpha'")
	m.OutputBlending = umat.OBMasked

	out := compile(t, l, m).Output
	assert.True(t, out.Alpha.Valid())
	assert.Equal(t, BlendClip, out.BlendMode)
	assert.False(t, out.UseBackfaceCulling)
	assert.Equal(t, [2]int{64, 32}, out.Size)
}

func TestFinalBlendOverridesCulling(t *testing.T) {
	tex := texture("Leaves", 8, 8)
	tex.TwoSided = true
	fb := umat.NewFinalBlend()
	fb.Reference = *ref("FinalBlend'Pkg.FB'")
	fb.Material = ref("Texture'Pkg.Leaves'")

	out := compile(t, memLoader{}.add(tex), fb).Output
	assert.True(t, out.UseBackfaceCulling)
	assert.Equal(t, [2]int{8, 8}, out.Size)
}

func TestColorModifier(t *testing.T) {
	l := memLoader{}.add(constantColor("White", 255, 255, 255, 255))
	m := umat.NewColorModifier()
	m.Reference = *ref("ColorModifier'Pkg.Tint'")
	m.Material = ref("ConstantColor'Pkg.White'")
	m.Color = umat.RGBA(255, 0, 0, 51)
	m.AlphaBlend = true
	m.RenderTwoSided = true

	res := compile(t, l, m)
	out := res.Output
	c := eval(t, res, out.Color, graph.EvalContext{})
	assert.InDelta(t, 1, c[0], 1e-9)
	assert.InDelta(t, 0, c[1], 1e-9)
	require.True(t, out.Alpha.Valid())
	assert.InDelta(t, 0.2, eval(t, res, out.Alpha, graph.EvalContext{})[0], 1e-9)
	assert.Equal(t, BlendBlend, out.BlendMode)
	assert.False(t, out.UseBackfaceCulling)
}

func TestOpacityModifier(t *testing.T) {
	l := memLoader{}.add(texture("Base", 4, 4), constantColor("Grey", 128, 128, 128, 255))
	m := umat.NewOpacityModifier()
	m.Reference = *ref("OpacityModifier'Pkg.Op'")
	m.Material = ref("Texture'Pkg.Base'")
	m.Opacity = ref("ConstantColor'Pkg.Grey'")

	res := compile(t, l, m)
	assert.Equal(t, BlendBlend, res.Output.BlendMode)
	assert.Equal(t, [2]int{4, 4}, res.Output.Size)
	assert.InDelta(t, 128.0/255, eval(t, res, res.Output.Alpha, graph.EvalContext{})[0], 1e-9)
}

func TestCyclicReference(t *testing.T) {
	a := umat.NewFinalBlend()
	a.Reference = *ref("FinalBlend'Pkg.A'")
	a.Material = ref("FinalBlend'Pkg.B'")
	b := umat.NewFinalBlend()
	b.Reference = *ref("FinalBlend'Pkg.B'")
	b.Material = ref("FinalBlend'Pkg.A'")

	res, err := newTestCompiler(t, memLoader{}.add(a, b), nil).Compile(context.Background(), a)
	require.ErrorIs(t, err, ErrCyclicReference)
	assert.Contains(t, err.Error(), "FinalBlend'Pkg.A' -> FinalBlend'Pkg.B' -> FinalBlend'Pkg.A'")
	assert.Nil(t, res)
}

func TestMaxDepth(t *testing.T) {
	l := memLoader{}.add(constantColor("Red", 255, 0, 0, 255))
	names := []string{"A", "B", "C", "D", "E"}
	for i, name := range names {
		fb := umat.NewFinalBlend()
		fb.Reference = *ref("FinalBlend'Pkg." + name + "'")
		if i+1 < len(names) {
			fb.Material = ref("FinalBlend'Pkg." + names[i+1] + "'")
		} else {
			fb.Material = ref("ConstantColor'Pkg.Red'")
		}
		l.add(fb)
	}

	c := newTestCompiler(t, l, &Options{MaxDepth: 3})
	_, err := c.CompileRef(context.Background(), *ref("FinalBlend'Pkg.A'"))
	require.ErrorIs(t, err, ErrMaxDepth)

	c = newTestCompiler(t, l, nil)
	res, err := c.CompileRef(context.Background(), *ref("FinalBlend'Pkg.A'"))
	require.NoError(t, err)
	assert.NotNil(t, res.Output)
}

func TestTexCoordSource(t *testing.T) {
	l := memLoader{}.add(texture("Brick", 8, 8))
	m := umat.NewTexCoordSource()
	m.Reference = *ref("TexCoordSource'Pkg.Src'")
	m.Material = ref("Texture'Pkg.Brick'")
	m.SourceChannel = 2

	res := compile(t, l, m)
	img := findNodes(res.Graph, graph.KindImageTexture)[0]
	uv := res.Graph.Node(img.Inputs["Vector"].Link.Node)
	assert.Equal(t, graph.KindUVMap, uv.Kind)
	assert.Equal(t, "EXTRAUV1", uv.Name)

	m.SourceChannel = -1
	_, err := newTestCompiler(t, l, nil).Compile(context.Background(), m)
	require.ErrorIs(t, err, ErrInvalidSourceChannel)
}

func TestTexEnvMapWorldCoords(t *testing.T) {
	l := memLoader{}.add(texture("Chrome", 8, 8))
	m := umat.NewTexEnvMap()
	m.Reference = *ref("TexEnvMap'Pkg.Env'")
	m.Material = ref("Texture'Pkg.Chrome'")
	m.TexCoordSource = umat.TCSWorldCoords

	res := compile(t, l, m)
	img := findNodes(res.Graph, graph.KindImageTexture)[0]
	link := img.Inputs["Vector"].Link
	assert.Equal(t, graph.KindGeometry, res.Graph.Node(link.Node).Kind)
	assert.Equal(t, "Position", link.Output)
}

func TestTexScalerPivot(t *testing.T) {
	l := memLoader{}.add(texture("Brick", 256, 256))
	m := umat.NewTexScaler()
	m.Reference = *ref("TexScaler'Pkg.Scale'")
	m.Material = ref("Texture'Pkg.Brick'")
	m.UScale, m.VScale = 2, 2
	m.UOffset, m.VOffset = 128, 128

	res := compile(t, l, m)
	assert.Equal(t, [2]int{256, 256}, res.Output.Size)

	img := findNodes(res.Graph, graph.KindImageTexture)[0]
	link := img.Inputs["Vector"].Link
	assert.Equal(t, graph.KindReroute, res.Graph.Node(link.Node).Kind)

	uv := eval(t, res, link, uvAt(0, 0))
	assert.InDelta(t, 0.25, uv[0], 1e-9)
	assert.InDelta(t, 0.25, uv[1], 1e-9)

	uv = eval(t, res, link, uvAt(0.5, 1))
	assert.InDelta(t, 0.5, uv[0], 1e-9)
	assert.InDelta(t, 0.75, uv[1], 1e-9)
}

func TestTexPanner(t *testing.T) {
	l := memLoader{}.add(texture("Water", 8, 8))
	m := umat.NewTexPanner()
	m.Reference = *ref("TexPanner'Pkg.Pan'")
	m.Material = ref("Texture'Pkg.Water'")
	m.PanRate = 0.5

	res := compile(t, l, m)
	link := findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link

	ctx := uvAt(0.1, 0.2)
	ctx.Time = 2
	uv := eval(t, res, link, ctx)
	assert.InDelta(t, 1.1, uv[0], 1e-9)
	assert.InDelta(t, 0.2, uv[1], 1e-9)

	m.PanDirection = umat.Rotator{Yaw: 16384}
	res = compile(t, l, m)
	link = findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link
	uv = eval(t, res, link, uvAt(1, 0))
	assert.InDelta(t, 0, uv[0], 1e-9)
	assert.InDelta(t, 1, uv[1], 1e-9)
}

func TestVariableTexPannerUsesWallClock(t *testing.T) {
	l := memLoader{}.add(texture("Water", 8, 8))
	m := umat.NewVariableTexPanner()
	m.Reference = *ref("VariableTexPanner'Pkg.Pan'")
	m.Material = ref("Texture'Pkg.Water'")
	m.PanRate = 1

	res := compile(t, l, m)
	link := findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link
	uv := eval(t, res, link, graph.EvalContext{Time: 5, WallTime: 0.25})
	assert.InDelta(t, 0.25, uv[0], 1e-9)
}

func TestTexOscillator(t *testing.T) {
	l := memLoader{}.add(texture("Flag", 256, 256))
	m := umat.NewTexOscillator()
	m.Reference = *ref("TexOscillator'Pkg.Osc'")
	m.Material = ref("Texture'Pkg.Flag'")
	m.UOscillationAmplitude = 0.1
	m.VOscillationAmplitude = 0

	res := compile(t, l, m)
	link := findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link

	ctx := uvAt(0.3, 0.2)
	ctx.Time = 0.25
	uv := eval(t, res, link, ctx)
	assert.InDelta(t, 0.4, uv[0], 1e-9)
	assert.InDelta(t, 0.2, uv[1], 1e-9)

	m.UOscillationType = umat.OTStretch
	m.UOffset = 128
	res = compile(t, l, m)
	link = findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link
	uv = eval(t, res, link, ctx)
	// (0.3 - 0.5) * 1.1 + 0.5
	assert.InDelta(t, 0.28, uv[0], 1e-9)
}

func TestTexRotatorFixed(t *testing.T) {
	l := memLoader{}.add(texture("Fan", 64, 64))
	m := umat.NewTexRotator()
	m.Reference = *ref("TexRotator'Pkg.Rot'")
	m.Material = ref("Texture'Pkg.Fan'")
	m.Rotation = umat.Rotator{Yaw: 32768}
	m.UOffset, m.VOffset = 32, 32

	res := compile(t, l, m)
	link := findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link
	uv := eval(t, res, link, uvAt(1, 0.5))
	assert.InDelta(t, 0, uv[0], 1e-9)
	assert.InDelta(t, 0.5, uv[1], 1e-9)
}

func TestTexRotatorConstant(t *testing.T) {
	l := memLoader{}.add(texture("Fan", 64, 64))
	m := umat.NewTexRotator()
	m.Reference = *ref("TexRotator'Pkg.Rot'")
	m.Material = ref("Texture'Pkg.Fan'")
	m.Rotation = umat.Rotator{Yaw: 16384}
	m.ConstantRotation = true

	res := compile(t, l, m)
	assert.Len(t, findNodes(res.Graph, graph.KindSignal), 3)

	link := findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link
	ctx := uvAt(1, 0)
	ctx.Time = 2
	uv := eval(t, res, link, ctx)
	assert.InDelta(t, -1, uv[0], 1e-9)
	assert.InDelta(t, 0, uv[1], 1e-9)
}

func TestMaterialSwitch(t *testing.T) {
	tex := texture("Glass", 32, 64)
	tex.AlphaTexture = true
	tex.TwoSided = true
	l := memLoader{}.add(
		constantColor("Red", 255, 0, 0, 255),
		tex,
		constantColor("Blue", 0, 0, 255, 255),
	)

	m := umat.NewMaterialSwitch()
	m.Reference = *ref("MaterialSwitch'Pkg.Switch'")
	m.Materials = []*umat.Reference{
		ref("ConstantColor'Pkg.Red'"),
		ref("Texture'Pkg.Glass'"),
		ref("ConstantColor'Pkg.Blue'"),
	}
	m.Current = 1

	res := compile(t, l, m)
	out := res.Output
	assert.Equal(t, [2]int{32, 64}, out.Size)
	assert.Equal(t, BlendBlend, out.BlendMode)
	assert.False(t, out.UseBackfaceCulling)
	assert.Equal(t, graph.Vec{1, 0, 1, 1}, eval(t, res, out.Color, uvAt(0, 0)))

	m.Current = 5
	res = compile(t, l, m)
	out = res.Output
	assert.Equal(t, [2]int{1, 1}, out.Size)
	assert.Equal(t, BlendOpaque, out.BlendMode)
	assert.Equal(t, graph.Vec{0, 0, 1, 1}, eval(t, res, out.Color, uvAt(0, 0)))
}

func TestMaterialSwitchEmpty(t *testing.T) {
	m := umat.NewMaterialSwitch()
	m.Reference = *ref("MaterialSwitch'Pkg.Switch'")
	assert.Nil(t, compile(t, memLoader{}, m).Output)
}

func sequence(items ...umat.SequenceItem) *umat.MaterialSequence {
	m := umat.NewMaterialSequence()
	m.Reference = *ref("MaterialSequence'Pkg.Seq'")
	m.SequenceItems = items
	return m
}

func TestMaterialSequence(t *testing.T) {
	l := memLoader{}.add(
		constantColor("Red", 255, 0, 0, 255),
		constantColor("Blue", 0, 0, 255, 255),
	)
	red := umat.SequenceItem{Material: ref("ConstantColor'Pkg.Red'"), Time: 1}
	blue := umat.SequenceItem{Material: ref("ConstantColor'Pkg.Blue'"), Time: 1}

	t.Run("loop", func(t *testing.T) {
		res := compile(t, l, sequence(red, blue))
		at := func(tm float64) graph.Vec {
			return eval(t, res, res.Output.Color, graph.EvalContext{Time: tm})
		}
		assert.Equal(t, graph.Vec{1, 0, 0, 1}, at(0.5))
		assert.Equal(t, graph.Vec{0, 0, 1, 1}, at(1.5))
		assert.Equal(t, graph.Vec{1, 0, 0, 1}, at(2.5))
	})

	t.Run("once", func(t *testing.T) {
		m := sequence(red, blue)
		m.Loop = false
		res := compile(t, l, m)
		assert.Equal(t, graph.Vec{0, 0, 1, 1}, eval(t, res, res.Output.Color, graph.EvalContext{Time: 2.5}))
	})

	t.Run("paused", func(t *testing.T) {
		m := sequence(red, blue)
		m.Paused = true
		m.CurrentTime = 1.5
		res := compile(t, l, m)
		assert.Equal(t, graph.Vec{0, 0, 1, 1}, eval(t, res, res.Output.Color, graph.EvalContext{Time: 0}))
	})

	t.Run("fade", func(t *testing.T) {
		fade := blue
		fade.Action = umat.MSAFadeToMaterial
		res := compile(t, l, sequence(red, fade))
		c := eval(t, res, res.Output.Color, graph.EvalContext{Time: 1.5})
		assert.InDelta(t, 0.5, c[0], 1e-9)
		assert.InDelta(t, 0.5, c[2], 1e-9)
	})
}

func TestFanOutIsolation(t *testing.T) {
	l := memLoader{}.add(texture("A", 64, 64), texture("B", 64, 64))
	scaler := umat.NewTexScaler()
	scaler.Reference = *ref("TexScaler'Pkg.Scale'")
	scaler.Material = ref("Texture'Pkg.A'")
	scaler.UScale = 2
	l.add(scaler)

	m := umat.NewCombiner()
	m.Reference = *ref("Combiner'Pkg.Mix'")
	m.CombineOperation = umat.COAdd
	m.Material1 = ref("TexScaler'Pkg.Scale'")
	m.Material2 = ref("Texture'Pkg.B'")

	res := compile(t, l, m)
	images := findNodes(res.Graph, graph.KindImageTexture)
	require.Len(t, images, 2)

	first := images[0].Inputs["Vector"].Link
	assert.Equal(t, graph.KindReroute, res.Graph.Node(first.Node).Kind)
	assert.False(t, images[1].Inputs["Vector"].Link.Valid())
}

func TestVertexColor(t *testing.T) {
	vc := umat.NewVertexColor()
	vc.Reference = *ref("VertexColor'Pkg.VC'")
	res := compile(t, memLoader{}, vc)

	ctx := graph.EvalContext{VertexColor: graph.Vec{0.1, 0.2, 0.3, 0.4}}
	assert.Equal(t, ctx.VertexColor, eval(t, res, res.Output.Color, ctx))
	assert.InDelta(t, 0.4, eval(t, res, res.Output.Alpha, ctx)[0], 1e-9)
}

func TestTexRotatorOscillating(t *testing.T) {
	l := memLoader{}.add(texture("Fan", 64, 64))
	m := umat.NewTexRotator()
	m.Reference = *ref("TexRotator'Pkg.Rot'")
	m.Material = ref("Texture'Pkg.Fan'")
	m.TexRotationType = umat.TROscillatingRotation
	m.Rotation = umat.Rotator{Yaw: 16384}
	m.OscillationRate = umat.Rotator{Yaw: 16384}
	m.OscillationAmplitude = umat.Rotator{Yaw: 8192}

	res := compile(t, l, m)
	rotors := findNodes(res.Graph, graph.KindVectorRotate)
	require.Len(t, rotors, 1)
	rotation := rotors[0].Inputs["Rotation"].Link
	require.True(t, rotation.Valid())

	// Yaw is Rotation + Amplitude*sin(Phase + Rate*t) on the Z axis.
	tests := []struct {
		time float64
		want float64
	}{
		{0, math.Pi / 2},
		{1, math.Pi/2 + math.Pi/4},
		{2, math.Pi / 2},
	}
	for _, tt := range tests {
		rot := eval(t, res, rotation, graph.EvalContext{Time: tt.time})
		assert.InDelta(t, 0, rot[0], 1e-9)
		assert.InDelta(t, 0, rot[1], 1e-9)
		assert.InDelta(t, tt.want, rot[2], 1e-9, "t=%v", tt.time)
	}
}

// extraUVSource wraps name in a TexCoordSource selecting EXTRAUV0.
func extraUVSource(name string) *umat.TexCoordSource {
	src := umat.NewTexCoordSource()
	src.Reference = *ref("TexCoordSource'Pkg.Extra'")
	src.Material = ref(name)
	src.SourceChannel = 1
	return src
}

func TestTexEnvMapSources(t *testing.T) {
	tests := []struct {
		name   string
		source umat.TexCoordSrc
		kind   graph.Kind
		output string
		uvSet  string
	}{
		{"camera coords", umat.TCSCameraCoords, graph.KindTexCoord, "Camera", ""},
		{"world env map", umat.TCSWorldEnvMapCoords, graph.KindTexCoord, "Reflection", ""},
		{"stream", umat.TCSStream2, graph.KindUVMap, "UV", "EXTRAUV1"},
		{"camera env map keeps incoming UV", umat.TCSCameraEnvMapCoords, graph.KindUVMap, "UV", "EXTRAUV0"},
		{"projector keeps incoming UV", umat.TCSProjectorCoords, graph.KindUVMap, "UV", "EXTRAUV0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := umat.NewTexEnvMap()
			env.Reference = *ref("TexEnvMap'Pkg.Env'")
			env.Material = ref("Texture'Pkg.Chrome'")
			env.TexCoordSource = tt.source
			l := memLoader{}.add(texture("Chrome", 8, 8), env)

			res := compile(t, l, extraUVSource("TexEnvMap'Pkg.Env'"))
			link := findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link
			src := res.Graph.Node(link.Node)
			assert.Equal(t, tt.kind, src.Kind)
			assert.Equal(t, tt.output, link.Output)
			assert.Equal(t, tt.uvSet, src.Name)
		})
	}
}

func TestVariableTexPannerAddsToActiveUV(t *testing.T) {
	pan := umat.NewVariableTexPanner()
	pan.Reference = *ref("VariableTexPanner'Pkg.Pan'")
	pan.Material = ref("Texture'Pkg.Water'")
	pan.PanRate = 1
	l := memLoader{}.add(texture("Water", 8, 8), pan)

	res := compile(t, l, extraUVSource("VariableTexPanner'Pkg.Pan'"))
	assert.Len(t, findNodes(res.Graph, graph.KindUVMap), 1)

	link := findNodes(res.Graph, graph.KindImageTexture)[0].Inputs["Vector"].Link
	ctx := graph.EvalContext{
		WallTime: 0.25,
		UV: map[string][2]float64{
			graph.PrimaryUVSet: {0.7, 0.9},
			"EXTRAUV0":         {0.1, 0.2},
		},
	}
	uv := eval(t, res, link, ctx)
	assert.InDelta(t, 0.35, uv[0], 1e-9)
	assert.InDelta(t, 0.2, uv[1], 1e-9)
}

func TestColorModifierWithoutChildColor(t *testing.T) {
	op := texture("Alpha", 16, 16)
	op.AlphaTexture = true
	sh := umat.NewShader()
	sh.Reference = *ref("Shader'Pkg.OnlyOpacity'")
	sh.Opacity = ref("Texture'Pkg.Alpha'")
	l := memLoader{}.add(op, sh)

	m := umat.NewColorModifier()
	m.Reference = *ref("ColorModifier'Pkg.Tint'")
	m.Material = ref("Shader'Pkg.OnlyOpacity'")
	m.Color = umat.RGBA(255, 0, 0, 255)

	res := compile(t, l, m)
	assert.False(t, res.Output.Color.Valid())
	assert.True(t, res.Output.Alpha.Valid())
	assert.Empty(t, findNodes(res.Graph, graph.KindMix))
}

func TestShaderOpacityWithoutChannels(t *testing.T) {
	empty := umat.NewShader()
	empty.Reference = *ref("Shader'Pkg.Empty'")
	l := memLoader{}.add(empty, constantColor("Base", 51, 51, 51, 255))

	m := umat.NewShader()
	m.Reference = *ref("Shader'Pkg.Wall'")
	m.Diffuse = ref("ConstantColor'Pkg.Base'")
	m.Opacity = ref("Shader'Pkg.Empty'")
	m.OutputBlending = umat.OBMasked

	out := compile(t, l, m).Output
	assert.False(t, out.Alpha.Valid())
	assert.Equal(t, BlendOpaque, out.BlendMode)

	op := umat.NewOpacityModifier()
	op.Reference = *ref("OpacityModifier'Pkg.Op'")
	op.Material = ref("ConstantColor'Pkg.Base'")
	op.Opacity = ref("Shader'Pkg.Empty'")

	out = compile(t, l, op).Output
	assert.False(t, out.Alpha.Valid())
	assert.Equal(t, BlendOpaque, out.BlendMode)
}
