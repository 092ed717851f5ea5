package compiler

import (
	"fmt"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/graph"
)

// uvSetName returns the mesh UV set of a vertex stream:
// stream 0 is the primary set, stream N>0 the (N-1)th extra set.
func uvSetName(stream int) string {
	if stream == 0 {
		return graph.PrimaryUVSet
	}
	return fmt.Sprintf("EXTRAUV%d", stream-1)
}

// colorVec converts an 8-bit color to normalized RGBA.
func colorVec(c umat.Color) graph.Vec {
	return graph.Vec(c.Normalized())
}

// eulerVec converts a rotator to XYZ Euler angles (roll, pitch, yaw) in radians.
func eulerVec(r umat.Rotator) graph.Vec {
	pitch, yaw, roll := r.Radians()
	return graph.Vec{roll, pitch, yaw}
}

// baseUV returns the active UV channel, creating a primary UV source when none is set.
func (s *session) baseUV(in SocketInputs) graph.Socket {
	if uv := in.ActiveUV(); uv.Valid() {
		return uv
	}
	return s.g.UVMap(graph.PrimaryUVSet)
}

// multiply returns a*b per channel. A missing operand yields the other one.
func (s *session) multiply(a, b graph.Socket) graph.Socket {
	switch {
	case !a.Valid():
		return b
	case !b.Valid():
		return a
	}
	return s.g.Mix(graph.OpMultiply, false, graph.Const(1), graph.Link(a), graph.Link(b)).Out("Result")
}

// add returns clamp(a+b) per channel. A missing operand yields the other one.
func (s *session) add(a, b graph.Socket) graph.Socket {
	switch {
	case !a.Valid():
		return b
	case !b.Valid():
		return a
	}
	return s.g.Mix(graph.OpAdd, true, graph.Const(1), graph.Link(a), graph.Link(b)).Out("Result")
}

// scale returns color*factor, with factor a scalar socket.
func (s *session) scale(color, factor graph.Socket) graph.Socket {
	if !color.Valid() || !factor.Valid() {
		return color
	}
	return s.g.Mix(graph.OpMix, false, graph.Link(factor), graph.Const(0, 0, 0, 0), graph.Link(color)).Out("Result")
}

// mathClamped adds a Math node with its result clamped to [0,1].
func (s *session) mathClamped(op string, a, b graph.Input) graph.Socket {
	out := s.g.Math(op, a, b)
	s.g.Node(out.Node).Clamp = true
	return out
}

// alphaOrColor returns the alpha channel of o, or its color when it has no alpha.
func alphaOrColor(o *SocketOutputs) graph.Socket {
	if o.Alpha.Valid() {
		return o.Alpha
	}
	return o.Color
}

// masked applies mask to color: scaled by the mask's alpha when it has one,
// multiplied by its color otherwise.
func (s *session) masked(color graph.Socket, mask *SocketOutputs) graph.Socket {
	if mask == nil {
		return color
	}
	if mask.Alpha.Valid() {
		return s.scale(color, mask.Alpha)
	}
	return s.multiply(color, mask.Color)
}

// pivot returns the UV pivot of a texel offset for a child of the given size.
func pivot(uOffset, vOffset float64, size [2]int) graph.Vec {
	var p graph.Vec
	if size[0] != 0 {
		p[0] = uOffset / float64(size[0])
	}
	if size[1] != 0 {
		p[1] = vOffset / float64(size[1])
	}
	return p
}
