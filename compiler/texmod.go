package compiler

import (
	"fmt"
	"math"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/graph"
)

// modifierInputs applies the TexCoordSource of a texture modifier: stream
// sources replace the active UV with that stream.
func (s *session) modifierInputs(m *umat.TexModifier, in SocketInputs) SocketInputs {
	if !m.TexCoordSource.IsStream() {
		return in
	}
	return SocketInputs{UVSource: s.g.UVMap(uvSetName(int(m.TexCoordSource)))}
}

// withChildSize compiles the wrapped material with a reroute as its UV, then
// links transform(base UV, child) into the reroute. Transforms that need the
// child's nominal size go through here.
func (s *session) withChildSize(m *umat.TexModifier, in SocketInputs, transform func(base graph.Socket, child *SocketOutputs) graph.Socket) (*SocketOutputs, error) {
	if m.Material == nil {
		return nil, nil
	}
	in = s.modifierInputs(m, in)
	base := s.baseUV(in)

	reroute := s.g.Reroute()
	child, err := s.load(m.Material, SocketInputs{UVSource: in.UVSource, UV: reroute.Out("Output")})
	if err != nil || child == nil {
		return nil, err
	}

	if err := s.g.SetInput(reroute.ID, "Input", graph.Link(transform(base, child))); err != nil {
		return nil, err
	}
	return child.clone(), nil
}

func compileTexCoordSource(s *session, m *umat.TexCoordSource, _ SocketInputs) (*SocketOutputs, error) {
	if m.SourceChannel < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSourceChannel, m.SourceChannel)
	}
	uv := s.g.UVMap(uvSetName(m.SourceChannel))
	return s.load(m.Material, SocketInputs{UVSource: uv})
}

func compileTexEnvMap(s *session, m *umat.TexEnvMap, in SocketInputs) (*SocketOutputs, error) {
	switch src := m.TexCoordSource; {
	case src.IsStream():
		in = SocketInputs{UVSource: s.g.UVMap(uvSetName(int(src)))}
	case src == umat.TCSWorldCoords:
		in = SocketInputs{UVSource: s.g.Geometry("Position")}
	case src == umat.TCSCameraCoords:
		in = SocketInputs{UVSource: s.g.TexCoord("Camera")}
	case src == umat.TCSWorldEnvMapCoords:
		in = SocketInputs{UVSource: s.g.TexCoord("Reflection")}
	default:
		// Camera environment and projector coordinates are not generated.
	}
	return s.load(m.Material, in)
}

// oscillation returns the per-axis time signal of a TexOscillator axis.
func oscillation(kind umat.TexOscillationType, rate, phase, amplitude float64) graph.Signal {
	w := 2 * math.Pi * rate
	if kind.IsStretch() {
		return graph.Sine(1, amplitude, w, 2*math.Pi*phase)
	}
	return graph.Sine(0, amplitude, w, 2*math.Pi*phase)
}

func compileTexOscillator(s *session, m *umat.TexOscillator, in SocketInputs) (*SocketOutputs, error) {
	return s.withChildSize(&m.TexModifier, in, func(base graph.Socket, child *SocketOutputs) graph.Socket {
		p := pivot(m.UOffset, m.VOffset, child.Size)
		uv := s.g.SeparateXYZ(graph.Link(base))

		axis := func(coord graph.Socket, center float64, kind umat.TexOscillationType, rate, phase, amp float64) graph.Socket {
			op := graph.OpAdd
			if kind.IsStretch() {
				op = graph.OpMultiply
			}
			sig := s.g.Signal(oscillation(kind, rate, phase, amp))
			centered := s.g.Math(graph.OpSubtract, graph.Link(coord), graph.Const(center))
			moved := s.g.Math(op, graph.Link(centered), graph.Link(sig))
			return s.g.Math(graph.OpAdd, graph.Link(moved), graph.Const(center))
		}

		u := axis(uv.Out("X"), p[0], m.UOscillationType, m.UOscillationRate, m.UOscillationPhase, m.UOscillationAmplitude)
		v := axis(uv.Out("Y"), p[1], m.VOscillationType, m.VOscillationRate, m.VOscillationPhase, m.VOscillationAmplitude)
		return s.g.CombineXYZ(graph.Link(u), graph.Link(v), graph.Const(0))
	})
}

// pan rotates base by direction and adds a translation along U driven by rate.
func (s *session) pan(base graph.Socket, direction umat.Rotator, rate graph.Signal) graph.Socket {
	rotated := s.g.VectorRotate(graph.Link(base), graph.Const(0, 0, 0), graph.Const(eulerSlice(direction)...))
	offset := s.g.CombineXYZ(graph.Link(s.g.Signal(rate)), graph.Const(0), graph.Const(0))
	return s.g.VectorMath(graph.OpAdd, graph.Link(rotated), graph.Link(offset))
}

func eulerSlice(r umat.Rotator) []float64 {
	e := eulerVec(r)
	return e[:3]
}

func compileTexPanner(s *session, m *umat.TexPanner, in SocketInputs) (*SocketOutputs, error) {
	if m.Material == nil {
		return nil, nil
	}
	in = s.modifierInputs(&m.TexModifier, in)
	uv := s.pan(s.baseUV(in), m.PanDirection, graph.Linear(0, m.PanRate))
	return s.load(m.Material, SocketInputs{UVSource: in.UVSource, UV: uv})
}

func compileVariableTexPanner(s *session, m *umat.VariableTexPanner, in SocketInputs) (*SocketOutputs, error) {
	if m.Material == nil {
		return nil, nil
	}
	in = s.modifierInputs(&m.TexModifier, in)
	uv := s.pan(s.baseUV(in), m.PanDirection, graph.Linear(0, m.PanRate).On(graph.ClockWall))
	return s.load(m.Material, SocketInputs{UVSource: in.UVSource, UV: uv})
}

func compileTexRotator(s *session, m *umat.TexRotator, in SocketInputs) (*SocketOutputs, error) {
	return s.withChildSize(&m.TexModifier, in, func(base graph.Socket, child *SocketOutputs) graph.Socket {
		center := pivot(m.UOffset, m.VOffset, child.Size)
		return s.g.VectorRotate(graph.Link(base), graph.Const(center[:3]...), s.rotation(m))
	})
}

// rotation returns the Euler rotation input of a TexRotator.
func (s *session) rotation(m *umat.TexRotator) graph.Input {
	rot := eulerVec(m.Rotation)
	kind := m.TexRotationType
	if m.ConstantRotation && kind == umat.TRFixedRotation {
		kind = umat.TRConstantlyRotating
	}

	var axes [3]graph.Socket
	switch kind {
	case umat.TRConstantlyRotating:
		for i := range axes {
			axes[i] = s.g.Signal(graph.Linear(0, rot[i]))
		}
	case umat.TROscillatingRotation:
		rate, amp, phase := eulerVec(m.OscillationRate), eulerVec(m.OscillationAmplitude), eulerVec(m.OscillationPhase)
		for i := range axes {
			axes[i] = s.g.Signal(graph.Sine(rot[i], amp[i], rate[i], phase[i]))
		}
	default:
		return graph.Const(rot[:3]...)
	}

	return graph.Link(s.g.CombineXYZ(graph.Link(axes[0]), graph.Link(axes[1]), graph.Link(axes[2])))
}

func compileTexScaler(s *session, m *umat.TexScaler, in SocketInputs) (*SocketOutputs, error) {
	return s.withChildSize(&m.TexModifier, in, func(base graph.Socket, child *SocketOutputs) graph.Socket {
		center := pivot(m.UOffset, m.VOffset, child.Size)
		centered := s.g.VectorMath(graph.OpSubtract, graph.Link(base), graph.Const(center[:3]...))
		scaled := s.g.VectorMath(graph.OpMultiply, graph.Link(centered), graph.Const(inverse(m.UScale), inverse(m.VScale), 1))
		return s.g.VectorMath(graph.OpAdd, graph.Link(scaled), graph.Const(center[:3]...))
	})
}

func inverse(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
