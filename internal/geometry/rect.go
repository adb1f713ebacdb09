package geometry

import "math"

// Epsilon clamps divisors so zero-sized elements never produce Inf or NaN.
const Epsilon = 0.001

// Rect is the measured bounding box of an element at one point in time.
// X is the left edge and Y the top edge, in viewport pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top returns the top edge.
func (r Rect) Top() float64 { return r.Y }

// Left returns the left edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.Right(), other.Right())
	maxY := max(r.Bottom(), other.Bottom())

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ApproxEqual reports whether every component differs by less than tol.
func (r Rect) ApproxEqual(other Rect, tol float64) bool {
	return math.Abs(r.X-other.X) < tol &&
		math.Abs(r.Y-other.Y) < tol &&
		math.Abs(r.Width-other.Width) < tol &&
		math.Abs(r.Height-other.Height) < tol
}
