package umat

import "math"

// Color is an 8-bit RGBA color.
type Color struct {
	R uint8 `json:"r" yaml:"r"` // Red channel component
	G uint8 `json:"g" yaml:"g"` // Green channel component
	B uint8 `json:"b" yaml:"b"` // Blue channel component
	A uint8 `json:"a" yaml:"a"` // Alpha channel component
}

// RGBA creates a Color from channel values.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Normalized returns the channels divided by 255.
func (c Color) Normalized() [4]float64 {
	return [4]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RotatorUnitsPerTurn is the number of rotator units in a full turn.
const RotatorUnitsPerTurn = 65536

// Rotator is an engine rotation in fixed-point angle units (65536 per turn).
type Rotator struct {
	Pitch int32 `json:"pitch" yaml:"pitch"`
	Yaw   int32 `json:"yaw" yaml:"yaw"`
	Roll  int32 `json:"roll" yaml:"roll"`
}

// UnitsToRadians converts rotator units to radians.
func UnitsToRadians(units int32) float64 {
	return float64(units) * (2 * math.Pi / RotatorUnitsPerTurn)
}

// Radians returns pitch, yaw and roll in radians.
func (r Rotator) Radians() (pitch, yaw, roll float64) {
	return UnitsToRadians(r.Pitch), UnitsToRadians(r.Yaw), UnitsToRadians(r.Roll)
}

// IsZero reports whether all components are zero.
func (r Rotator) IsZero() bool {
	return r == Rotator{}
}
