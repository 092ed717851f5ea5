package compiler

import (
	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/graph"
)

// selector builds a chain of selections between compiled children.
type selector struct {
	s            *session
	color, alpha graph.Socket
}

// pick switches to o wherever fac is 1. Unset channels of o leave the chain as is.
func (sel *selector) pick(fac graph.Socket, o *SocketOutputs) {
	if o == nil {
		return
	}
	if o.Color.Valid() {
		sel.color = sel.s.g.Mix(graph.OpMix, false, graph.Link(fac), graph.Link(sel.color), graph.Link(o.Color)).Out("Result")
	}
	if o.Alpha.Valid() {
		sel.alpha = sel.s.g.Mix(graph.OpMix, false, graph.Link(fac), graph.Link(sel.alpha), graph.Link(o.Alpha)).Out("Result")
	}
}

func compileMaterialSwitch(s *session, m *umat.MaterialSwitch, in SocketInputs) (*SocketOutputs, error) {
	n := len(m.Materials)
	if n == 0 {
		return nil, nil
	}

	children := make([]*SocketOutputs, n)
	for i, ref := range m.Materials {
		o, err := s.load(ref, in)
		if err != nil {
			return nil, err
		}
		children[i] = o
	}

	// floor(Current) mod n
	index := s.g.Math(graph.OpFloor, graph.Link(s.g.Value(float64(m.Current))), graph.Input{})
	index = s.g.Math(graph.OpModulo, graph.Link(index), graph.Const(float64(n)))

	// Reverse order: earlier entries are applied last and win.
	sel := &selector{s: s}
	for i := n - 1; i >= 0; i-- {
		eq := s.g.Math(graph.OpCompare, graph.Link(index), graph.Const(float64(i)))
		sel.pick(eq, children[i])
	}

	current := ((m.Current % n) + n) % n
	out := newOutputs()
	if c := children[current]; c != nil {
		out = c.clone()
	}
	out.Color, out.Alpha = sel.color, sel.alpha
	return out, nil
}

// stepEpsilon makes a step active at exactly its start time.
const stepEpsilon = 1e-6

func compileMaterialSequence(s *session, m *umat.MaterialSequence, in SocketInputs) (*SocketOutputs, error) {
	if len(m.SequenceItems) == 0 {
		return nil, nil
	}

	children := make([]*SocketOutputs, len(m.SequenceItems))
	for i, it := range m.SequenceItems {
		o, err := s.load(it.Material, in)
		if err != nil {
			return nil, err
		}
		children[i] = o
	}

	total := m.TotalTime()
	var t graph.Socket
	switch {
	case m.Paused:
		t = s.g.Value(m.CurrentTime)
	case m.Loop && total > 0:
		t = s.g.Math(graph.OpModulo, graph.Link(s.g.Signal(graph.Linear(m.CurrentTime, 1))), graph.Const(total))
	default:
		t = s.g.Signal(graph.Linear(m.CurrentTime, 1))
	}

	sel := &selector{s: s}
	if c := children[0]; c != nil {
		sel.color, sel.alpha = c.Color, c.Alpha
	}
	start := 0.0
	for i, it := range m.SequenceItems {
		if i > 0 {
			var fac graph.Socket
			if it.Action == umat.MSAFadeToMaterial && it.Time > 0 {
				// Cross-fade from the previous step over this step's duration.
				elapsed := s.g.Math(graph.OpSubtract, graph.Link(t), graph.Const(start))
				fac = s.mathClamped(graph.OpDivide, graph.Link(elapsed), graph.Const(it.Time))
			} else {
				fac = s.g.Math(graph.OpGreater, graph.Link(t), graph.Const(start-stepEpsilon))
			}
			sel.pick(fac, children[i])
		}
		start += it.Time
	}

	out := newOutputs()
	for _, c := range children {
		if c != nil {
			out = c.clone()
			break
		}
	}
	out.Color, out.Alpha = sel.color, sel.alpha
	return out, nil
}
