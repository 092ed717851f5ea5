package graph

import (
	"fmt"
	"math"
)

// Clock selects the time base a signal runs on.
type Clock uint8

const (
	// ClockScene is the playback time of the scene.
	ClockScene Clock = iota
	// ClockWall is the real time since start, independent of playback.
	ClockWall
)

// String returns the clock name.
func (c Clock) String() string {
	if c == ClockWall {
		return "wall"
	}
	return "scene"
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// SignalKind is the shape of a time signal.
type SignalKind uint8

const (
	// SignalConstant is Bias.
	SignalConstant SignalKind = iota
	// SignalLinear is Bias + Rate*t.
	SignalLinear
	// SignalSine is Bias + Amplitude*sin(Phase + Frequency*t).
	SignalSine
	// SignalTriangle ramps 0 -> 1 -> 0 once per Period, shifted by Offset seconds.
	SignalTriangle
)

var signalKindNames = [...]string{"constant", "linear", "sine", "triangle"}

// String returns the kind name.
func (k SignalKind) String() string {
	if int(k) < len(signalKindNames) {
		return signalKindNames[k]
	}
	return fmt.Sprintf("SignalKind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k SignalKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Signal is a parametric function of time stored on a graph node and
// evaluated by whoever plays the graph back.
type Signal struct {
	Kind      SignalKind `json:"kind" yaml:"kind"`
	Clock     Clock      `json:"clock" yaml:"clock"`
	Bias      float64    `json:"bias,omitempty" yaml:"bias,omitempty"`
	Rate      float64    `json:"rate,omitempty" yaml:"rate,omitempty"`           // Linear slope per second
	Amplitude float64    `json:"amplitude,omitempty" yaml:"amplitude,omitempty"` // Sine amplitude
	Frequency float64    `json:"frequency,omitempty" yaml:"frequency,omitempty"` // Sine angular frequency in radians per second
	Phase     float64    `json:"phase,omitempty" yaml:"phase,omitempty"`         // Sine phase in radians
	Period    float64    `json:"period,omitempty" yaml:"period,omitempty"`       // Triangle period in seconds
	Offset    float64    `json:"offset,omitempty" yaml:"offset,omitempty"`       // Triangle time offset in seconds
}

// Constant returns a signal that is always v.
func Constant(v float64) Signal {
	return Signal{Kind: SignalConstant, Bias: v}
}

// Linear returns bias + rate*t.
func Linear(bias, rate float64) Signal {
	return Signal{Kind: SignalLinear, Bias: bias, Rate: rate}
}

// Sine returns bias + amplitude*sin(phase + frequency*t).
func Sine(bias, amplitude, frequency, phase float64) Signal {
	return Signal{Kind: SignalSine, Bias: bias, Amplitude: amplitude, Frequency: frequency, Phase: phase}
}

// Triangle returns a 0 -> 1 -> 0 ramp repeating every period seconds.
func Triangle(period, offset float64) Signal {
	return Signal{Kind: SignalTriangle, Period: period, Offset: offset}
}

// On returns a copy of s running on clock c.
func (s Signal) On(c Clock) Signal {
	s.Clock = c
	return s
}

// Eval returns the signal value at time t.
func (s Signal) Eval(t float64) float64 {
	switch s.Kind {
	case SignalLinear:
		return s.Bias + s.Rate*t
	case SignalSine:
		return s.Bias + s.Amplitude*math.Sin(s.Phase+s.Frequency*t)
	case SignalTriangle:
		if s.Period <= 0 {
			return 0
		}
		x := (t + s.Offset) / s.Period
		x -= math.Floor(x)
		return 1 - math.Abs(2*x-1)
	default:
		return s.Bias
	}
}

// String renders the signal as a formula in t.
func (s Signal) String() string {
	switch s.Kind {
	case SignalLinear:
		return fmt.Sprintf("%g + %g*t", s.Bias, s.Rate)
	case SignalSine:
		return fmt.Sprintf("%g + %g*sin(%g + %g*t)", s.Bias, s.Amplitude, s.Phase, s.Frequency)
	case SignalTriangle:
		return fmt.Sprintf("triangle(period=%g, offset=%g)", s.Period, s.Offset)
	default:
		return fmt.Sprintf("%g", s.Bias)
	}
}
