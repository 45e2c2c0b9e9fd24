package hypocal_shap

import "math"

// ---------------------------------------------------------------------------
// Curve shapes
// ---------------------------------------------------------------------------

// Curve is one closed-form segment of a contribution function.
type Curve interface {
	At(x float64) float64
}

// PowerBelow grows as x falls under Threshold:
// Scale * ((Threshold - x) / Span) ^ Exponent.
type PowerBelow struct {
	Scale     float64
	Threshold float64
	Span      float64
	Exponent  float64
}

func (c PowerBelow) At(x float64) float64 {
	return c.Scale * math.Pow((c.Threshold-x)/c.Span, c.Exponent)
}

// PowerAbove grows as x rises over Threshold:
// Scale * ((x - Threshold) / Span) ^ Exponent.
type PowerAbove struct {
	Scale     float64
	Threshold float64
	Span      float64
	Exponent  float64
}

func (c PowerAbove) At(x float64) float64 {
	return c.Scale * math.Pow((x-c.Threshold)/c.Span, c.Exponent)
}

// LinearAbove is Scale * (x - Threshold) / Span.
type LinearAbove struct {
	Scale     float64
	Threshold float64
	Span      float64
}

func (c LinearAbove) At(x float64) float64 {
	return c.Scale * (x - c.Threshold) / c.Span
}

// LogAbove is Scale * ln(1 + (x - Threshold) / Span).
type LogAbove struct {
	Scale     float64
	Threshold float64
	Span      float64
}

func (c LogAbove) At(x float64) float64 {
	return c.Scale * math.Log(1+(x-c.Threshold)/c.Span)
}

// CosineWell is Offset - Scale * cos(pi * (x - Start) / Width).
type CosineWell struct {
	Offset float64
	Scale  float64
	Start  float64
	Width  float64
}

func (c CosineWell) At(x float64) float64 {
	return c.Offset - c.Scale*math.Cos(math.Pi*(x-c.Start)/c.Width)
}

// GaussianBump is Scale * exp(-((x - Center) / Width)^2). A negative Scale
// gives a protective dip centred on Center.
type GaussianBump struct {
	Scale  float64
	Center float64
	Width  float64
}

func (c GaussianBump) At(x float64) float64 {
	z := (x - c.Center) / c.Width
	return c.Scale * math.Exp(-z*z)
}

// SineArch is Scale * sin(pi * (x - Start) / Width), one half period over
// [Start, Start+Width].
type SineArch struct {
	Scale float64
	Start float64
	Width float64
}

func (c SineArch) At(x float64) float64 {
	return c.Scale * math.Sin(math.Pi*(x-c.Start)/c.Width)
}

// EdgeGaussian decays with the distance to the nearer of Low and High:
// Scale * exp(-(min(|x-Low|, |x-High|) / Width)^2).
type EdgeGaussian struct {
	Scale float64
	Low   float64
	High  float64
	Width float64
}

func (c EdgeGaussian) At(x float64) float64 {
	d := math.Min(math.Abs(x-c.Low), math.Abs(x-c.High)) / c.Width
	return c.Scale * math.Exp(-d*d)
}

// ---------------------------------------------------------------------------
// Piecewise
// ---------------------------------------------------------------------------

// Piecewise selects Below when x < Lower, Above when x > Upper (or x >= Upper
// with UpperInclusive) and Within otherwise. A nil Below or Above disables
// that side.
type Piecewise struct {
	Lower          float64
	Upper          float64
	UpperInclusive bool

	Below  Curve
	Within Curve
	Above  Curve
}

// At evaluates the contribution at x.
func (p Piecewise) At(x float64) float64 {
	switch {
	case p.Below != nil && x < p.Lower:
		return p.Below.At(x)
	case p.Above != nil && (x > p.Upper || (p.UpperInclusive && x == p.Upper)):
		return p.Above.At(x)
	default:
		return p.Within.At(x)
	}
}

// Boundary describes the two one-sided values at a branch threshold.
type Boundary struct {
	At    float64
	Left  float64
	Right float64
}

// Jump is the absolute gap between the one-sided values.
func (b Boundary) Jump() float64 {
	return math.Abs(b.Right - b.Left)
}

// Boundaries lists the branch thresholds of p in ascending order.
func (p Piecewise) Boundaries() []Boundary {
	var out []Boundary
	if p.Below != nil {
		out = append(out, Boundary{At: p.Lower, Left: p.Below.At(p.Lower), Right: p.Within.At(p.Lower)})
	}
	if p.Above != nil {
		out = append(out, Boundary{At: p.Upper, Left: p.Within.At(p.Upper), Right: p.Above.At(p.Upper)})
	}
	return out
}

//Personal.AI order the ending
