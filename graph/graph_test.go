package graph

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, g *Graph, s Socket, ctx EvalContext) Vec {
	t.Helper()
	v, err := Evaluate(g, s, ctx)
	require.NoError(t, err)
	return v
}

func TestSignalEval(t *testing.T) {
	assert.Equal(t, 3.0, Constant(3).Eval(100))
	assert.Equal(t, 2.5, Linear(0.5, 2).Eval(1))
	assert.InDelta(t, 1.0, Sine(0, 1, math.Pi, 0).Eval(0.5), 1e-12)

	tri := Triangle(2, 0)
	assert.InDelta(t, 0.0, tri.Eval(0), 1e-12)
	assert.InDelta(t, 0.5, tri.Eval(0.5), 1e-12)
	assert.InDelta(t, 1.0, tri.Eval(1), 1e-12)
	assert.InDelta(t, 0.0, tri.Eval(2), 1e-12)
	assert.InDelta(t, 1.0, Triangle(2, 1).Eval(0), 1e-12)
	assert.Equal(t, 0.0, Triangle(0, 0).Eval(5))
}

func TestSignalClock(t *testing.T) {
	g := New()
	scene := g.Signal(Linear(0, 1))
	wall := g.Signal(Linear(0, 1).On(ClockWall))
	ctx := EvalContext{Time: 2, WallTime: 7}
	assert.Equal(t, 2.0, eval(t, g, scene, ctx)[0])
	assert.Equal(t, 7.0, eval(t, g, wall, ctx)[0])
}

func TestMixOps(t *testing.T) {
	g := New()
	a := Link(g.ConstantColor(Vec{0.5, 0.5, 0.5, 1}))
	b := Link(g.ConstantColor(Vec{0.5, 1, 0, 1}))

	mul := g.Mix(OpMultiply, false, Const(1), a, b).Out("Result")
	add := g.Mix(OpAdd, true, Const(1), a, b).Out("Result")
	sub := g.Mix(OpSubtract, false, Const(1), a, b).Out("Result")
	lerp := g.Mix(OpMix, false, Const(0.5), a, b)

	assert.Equal(t, Vec{0.25, 0.5, 0, 1}, eval(t, g, mul, EvalContext{}))
	assert.Equal(t, Vec{1, 1, 0.5, 1}, eval(t, g, add, EvalContext{}))
	assert.Equal(t, Vec{0, -0.5, 0.5, 0}, eval(t, g, sub, EvalContext{}))
	assert.Equal(t, Vec{0.5, 0.75, 0.25, 1}, eval(t, g, lerp.Out("Result"), EvalContext{}))
	assert.Equal(t, 1.0, eval(t, g, lerp.Out("Alpha"), EvalContext{})[0])
}

func TestMathOps(t *testing.T) {
	g := New()
	tests := []struct {
		op   string
		a, b float64
		want float64
	}{
		{OpAdd, 1, 2, 3},
		{OpDivide, 1, 0, 0},
		{OpFloor, 2.7, 0, 2},
		{OpModulo, 5, 3, 2},
		{OpModulo, -1, 3, 2},
		{OpCompare, 2, 2, 1},
		{OpCompare, 2, 3, 0},
		{OpMaximum, 2, 3, 3},
	}
	for _, tt := range tests {
		s := g.Math(tt.op, Const(tt.a), Const(tt.b))
		assert.InDelta(t, tt.want, eval(t, g, s, EvalContext{})[0], 1e-12, "%s(%v, %v)", tt.op, tt.a, tt.b)
	}
}

func TestVectorRotate(t *testing.T) {
	g := New()
	s := g.VectorRotate(Const(1, 0, 0), Const(0.5, 0, 0), Const(0, 0, math.Pi/2))
	v := eval(t, g, s, EvalContext{})
	assert.InDelta(t, 0.5, v[0], 1e-12)
	assert.InDelta(t, 0.5, v[1], 1e-12)
}

func TestUVAndVectorMath(t *testing.T) {
	g := New()
	uv := g.UVMap("EXTRAUV0")
	scaled := g.VectorMath(OpScale, Link(uv), Const(2))
	moved := g.VectorMath(OpAdd, Link(scaled), Const(0.25, 0, 0))
	sep := g.SeparateXYZ(Link(moved))

	ctx := EvalContext{UV: map[string][2]float64{"EXTRAUV0": {0.5, 0.25}}}
	assert.Equal(t, 1.25, eval(t, g, sep.Out("X"), ctx)[0])
	assert.Equal(t, 0.5, eval(t, g, sep.Out("Y"), ctx)[0])
}

func checker() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	return img
}

func TestImageSampling(t *testing.T) {
	g := New()
	img := NewImage("checker", checker())
	assert.Equal(t, 2, img.Width)

	repeat := g.ImageTexture(img, ExtensionRepeat, Input{})
	extend := g.ImageTexture(img, ExtensionExtend, Const(1.75, 1.75))

	ctx := EvalContext{UV: map[string][2]float64{PrimaryUVSet: {1.25, 0.25}}}
	assert.Equal(t, Vec{1, 0, 0, 1}, eval(t, g, repeat.Out("Color"), ctx))
	assert.InDelta(t, 128.0/255, eval(t, g, extend.Out("Alpha"), ctx)[0], 1e-12)

	missing := g.ImageTexture(NewImage("gone", nil), ExtensionRepeat, Input{})
	assert.Equal(t, missingPixel, eval(t, g, missing.Out("Color"), ctx))
}

func TestHueSaturation(t *testing.T) {
	g := New()
	gray := Link(g.ConstantColor(Vec{0.25, 0.25, 0.25, 1}))
	s := g.HueSaturation(Const(0.5), Const(1), Const(2), Const(1), gray)
	assert.Equal(t, Vec{0.5, 0.5, 0.5, 1}, eval(t, g, s, EvalContext{}))
}

func TestRerouteAndCycles(t *testing.T) {
	g := New()
	r := g.Reroute()
	require.NoError(t, g.SetInput(r.ID, "Input", Link(g.Value(4))))
	assert.Equal(t, 4.0, eval(t, g, r.Out("Output"), EvalContext{})[0])

	loop := g.Reroute()
	require.NoError(t, g.SetInput(loop.ID, "Input", Link(loop.Out("Output"))))
	_, err := Evaluate(g, loop.Out("Output"), EvalContext{})
	assert.ErrorIs(t, err, ErrEvalCycle)

	assert.ErrorIs(t, g.SetInput(99, "Input", Const(1)), ErrUnknownNode)
	_, err = Evaluate(g, Socket{Node: r.ID, Output: "Nope"}, EvalContext{})
	assert.ErrorIs(t, err, ErrUnknownOutput)
}

func TestEncode(t *testing.T) {
	g := New()
	c := g.ConstantColor(Vec{1, 0, 0, 1})
	g.Mix(OpMultiply, true, Const(1), Link(c), Link(g.Signal(Sine(0.5, 0.5, 1, 0))))

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf))
	out := buf.String()
	assert.Contains(t, out, "kind: ConstantColor")
	assert.Contains(t, out, "1:Color")
	assert.Contains(t, out, "kind: sine")
	assert.Equal(t, []KindCount{{KindConstantColor, 1}, {KindMix, 1}, {KindSignal, 1}}, g.Counts())
}
