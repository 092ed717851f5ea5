package compiler

import (
	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/graph"
)

func compileCombiner(s *session, m *umat.Combiner, in SocketInputs) (*SocketOutputs, error) {
	m1, err := s.load(m.Material1, in)
	if err != nil {
		return nil, err
	}
	m2, err := s.load(m.Material2, in)
	if err != nil {
		return nil, err
	}
	mask, err := s.load(m.Mask, in)
	if err != nil {
		return nil, err
	}

	// Metadata comes from the first child that compiled, in this order.
	var first *SocketOutputs
	for _, o := range []*SocketOutputs{m1, m2, mask} {
		if o != nil {
			first = o
			break
		}
	}
	if first == nil {
		return nil, nil
	}

	c1, c2 := colorOf(m1), colorOf(m2)
	a1, a2 := alphaOf(m1), alphaOf(m2)

	out := first.clone()
	out.Color = s.combineColor(m, c1, c2, a1, a2, mask)
	out.Alpha = s.combineAlpha(m.AlphaOperation, a1, a2, alphaOf(mask))
	return out, nil
}

func colorOf(o *SocketOutputs) graph.Socket {
	if o == nil {
		return graph.Socket{}
	}
	return o.Color
}

func alphaOf(o *SocketOutputs) graph.Socket {
	if o == nil {
		return graph.Socket{}
	}
	return o.Alpha
}

func (s *session) combineColor(m *umat.Combiner, c1, c2, a1, a2 graph.Socket, mask *SocketOutputs) graph.Socket {
	first, second := c1, c2
	if m.InvertMask {
		first, second = c2, c1
	}

	switch m.CombineOperation {
	case umat.COUseColorFromMaterial1:
		return c1
	case umat.COUseColorFromMaterial2:
		return c2
	case umat.COMultiply:
		out := s.multiply(c1, c2)
		factor := 0.0
		switch {
		case m.Modulate4X:
			factor = 4
		case m.Modulate2X:
			factor = 2
		}
		if factor > 0 && out.Valid() {
			out = s.g.Mix(graph.OpMultiply, true, graph.Const(1), graph.Link(out), graph.Const(factor, factor, factor, 1)).Out("Result")
		}
		return out
	case umat.COAdd:
		return s.add(c1, c2)
	case umat.COSubtract:
		if !first.Valid() || !second.Valid() {
			return first
		}
		return s.g.Mix(graph.OpSubtract, true, graph.Const(1), graph.Link(first), graph.Link(second)).Out("Result")
	case umat.COAlphaBlendWithMask:
		return s.blend(first, second, alphaOf(mask))
	case umat.COAddWithMaskModulation:
		fac := a2
		if !fac.Valid() {
			fac = a1
		}
		if !c1.Valid() || !c2.Valid() {
			return s.add(c1, c2)
		}
		return s.g.Mix(graph.OpAdd, true, factorInput(fac), graph.Link(c1), graph.Link(c2)).Out("Result")
	case umat.COUseColorFromMask:
		return colorOf(mask)
	default:
		return c1
	}
}

// blend mixes a towards b by fac. Without a factor a passes through.
func (s *session) blend(a, b, fac graph.Socket) graph.Socket {
	if !a.Valid() || !b.Valid() {
		if a.Valid() {
			return a
		}
		return b
	}
	if !fac.Valid() {
		return a
	}
	return s.g.Mix(graph.OpMix, false, graph.Link(fac), graph.Link(a), graph.Link(b)).Out("Result")
}

// factorInput links fac, or uses full strength when there is none.
func factorInput(fac graph.Socket) graph.Input {
	if fac.Valid() {
		return graph.Link(fac)
	}
	return graph.Const(1)
}

func (s *session) combineAlpha(op umat.AlphaOperation, a1, a2, mask graph.Socket) graph.Socket {
	switch op {
	case umat.AOUseMask:
		return mask
	case umat.AOMultiply, umat.AOAdd:
		if !a1.Valid() {
			return a2
		}
		if !a2.Valid() {
			return a1
		}
		if op == umat.AOMultiply {
			return s.g.Math(graph.OpMultiply, graph.Link(a1), graph.Link(a2))
		}
		return s.mathClamped(graph.OpAdd, graph.Link(a1), graph.Link(a2))
	case umat.AOUseAlphaFromMaterial1:
		return a1
	case umat.AOUseAlphaFromMaterial2:
		return a2
	default:
		return graph.Socket{}
	}
}
