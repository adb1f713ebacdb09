package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DeltaTolerance is the threshold under which a delta component counts as
// "no change".
const DeltaTolerance = 1e-3

// Delta is the transform that makes an element laid out at "last" look
// like it still sits at "first".
type Delta struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
}

// NoDelta is the identity delta.
var NoDelta = Delta{ScaleX: 1, ScaleY: 1}

// IsIdentity reports whether applying d would not visibly move the element.
func (d Delta) IsIdentity() bool {
	return math.Abs(d.TranslateX) < DeltaTolerance &&
		math.Abs(d.TranslateY) < DeltaTolerance &&
		math.Abs(d.ScaleX-1) < DeltaTolerance &&
		math.Abs(d.ScaleY-1) < DeltaTolerance
}

// Matrix returns translate(dx, dy) scale(sx, sy) as a matrix.
func (d Delta) Matrix() Matrix2D {
	return Translate(d.TranslateX, d.TranslateY).Multiply(Scale(d.ScaleX, d.ScaleY))
}

// Counter returns the scale that cancels d's scale for descendants.
func (d Delta) Counter() Matrix2D {
	return Scale(1/clamp(d.ScaleX), 1/clamp(d.ScaleY))
}

// ScaleOf returns how much larger a is than b on each axis.
func ScaleOf(a, b Rect) (sx, sy float64) {
	return a.Width / max(b.Width, Epsilon), a.Height / max(b.Height, Epsilon)
}

// TranslationOf returns the offset of a's top-left corner from b's.
func TranslationOf(a, b Rect) (dx, dy float64) {
	return a.X - b.X, a.Y - b.Y
}

// Invert computes the delta that maps last back onto first, assuming a
// top-left transform origin.
func Invert(first, last Rect) Delta {
	return InvertAround(first, last, TopLeft)
}

// InvertAround is Invert for an arbitrary transform origin.
func InvertAround(first, last Rect, o Origin) Delta {
	sx, sy := ScaleOf(first, last)
	dx, dy := TranslationOf(first, last)
	// Scaling around an interior origin shifts the top-left corner too.
	dx += o.X * last.Width * (sx - 1)
	dy += o.Y * last.Height * (sy - 1)
	return Delta{TranslateX: dx, TranslateY: dy, ScaleX: sx, ScaleY: sy}
}

// InvertTransformed computes the delta for an element whose measured rect
// already includes the live transform current. The transform is removed
// first so the result replaces it instead of stacking on top of it.
func InvertTransformed(first, measured Rect, current Matrix2D, o Origin) Delta {
	return InvertAround(first, Untransform(measured, current, o), o)
}

// Untransform recovers the layout rect from a rect measured while the
// scale/translate part of m was applied around origin o.
func Untransform(measured Rect, m Matrix2D, o Origin) Rect {
	sx, sy := clamp(m.ScaleX()), clamp(m.ScaleY())
	w := measured.Width / sx
	h := measured.Height / sy
	return Rect{
		X:      measured.X - m.TranslateX() - o.X*w*(1-sx),
		Y:      measured.Y - m.TranslateY() - o.Y*h*(1-sy),
		Width:  w,
		Height: h,
	}
}

// Apply returns where layout rect r appears once d is applied around o.
func (d Delta) Apply(r Rect, o Origin) Rect {
	ox := r.X + o.X*r.Width
	oy := r.Y + o.Y*r.Height
	return d.Matrix().TransformRect(r, ox, oy)
}

func clamp(v float64) float64 {
	if math.Abs(v) < Epsilon {
		return Epsilon
	}
	return v
}

// Origin is a transform origin expressed as fractions of the element box.
type Origin struct {
	X float64
	Y float64
}

var (
	TopLeft = Origin{}
	Center  = Origin{X: 0.5, Y: 0.5}
)

// CSS renders the origin as a transform-origin value.
func (o Origin) CSS() string {
	return strconv.FormatFloat(o.X*100, 'f', -1, 64) + "% " +
		strconv.FormatFloat(o.Y*100, 'f', -1, 64) + "%"
}

// ParseOrigin parses a transform-origin value made of keywords
// (left, right, top, bottom, center) and/or percentages.
func ParseOrigin(s string) (Origin, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 2 {
		return TopLeft, fmt.Errorf("parse origin %q: expected one or two values", s)
	}

	o := Center
	var setX, setY bool
	for i, f := range fields {
		switch f {
		case "left":
			o.X, setX = 0, true
		case "right":
			o.X, setX = 1, true
		case "top":
			o.Y, setY = 0, true
		case "bottom":
			o.Y, setY = 1, true
		case "center":
		default:
			if !strings.HasSuffix(f, "%") {
				return TopLeft, fmt.Errorf("parse origin %q: unknown value %q", s, f)
			}
			v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
			if err != nil {
				return TopLeft, fmt.Errorf("parse origin %q: %w", s, err)
			}
			// Positional percentages: first is X unless X was already given.
			if i == 0 && !setX || setY {
				o.X, setX = v/100, true
			} else {
				o.Y, setY = v/100, true
			}
		}
	}
	return o, nil
}
