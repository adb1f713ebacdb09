package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// This is the same order CSS uses for matrix(a, b, c, d, e, f).
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// ScaleX returns the horizontal scale component.
func (m Matrix2D) ScaleX() float64 { return m[0] }

// ScaleY returns the vertical scale component.
func (m Matrix2D) ScaleY() float64 { return m[3] }

// TranslateX returns the horizontal translation component.
func (m Matrix2D) TranslateX() float64 { return m[4] }

// TranslateY returns the vertical translation component.
func (m Matrix2D) TranslateY() float64 { return m[5] }

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformRect transforms a rectangle around the given origin point
// (absolute coordinates) and returns its axis-aligned bounding box.
func (m Matrix2D) TransformRect(r Rect, ox, oy float64) Rect {
	t := Translate(ox, oy).Multiply(m).Multiply(Translate(-ox, -oy))

	x0, y0 := t.TransformPoint(r.X, r.Y)
	x1, y1 := t.TransformPoint(r.Right(), r.Y)
	x2, y2 := t.TransformPoint(r.Right(), r.Bottom())
	x3, y3 := t.TransformPoint(r.X, r.Bottom())

	minX := min(x0, min(x1, min(x2, x3)))
	minY := min(y0, min(y1, min(y2, y3)))
	maxX := max(x0, max(x1, max(x2, x3)))
	maxY := max(y0, max(y1, max(y2, y3)))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Determinant returns the determinant of the matrix.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if not invertible.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix2D{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}

// Lerp interpolates every component between m and other.
func (m Matrix2D) Lerp(other Matrix2D, t float64) Matrix2D {
	var out Matrix2D
	for i := range m {
		out[i] = m[i] + (other[i]-m[i])*t
	}
	return out
}

// String renders the matrix as a CSS matrix() value.
func (m Matrix2D) String() string {
	return fmt.Sprintf("matrix(%s, %s, %s, %s, %s, %s)",
		formatFloat(m[0]), formatFloat(m[1]), formatFloat(m[2]),
		formatFloat(m[3]), formatFloat(m[4]), formatFloat(m[5]))
}

// ParseMatrix parses a computed CSS transform value. "none" and the empty
// string yield Identity; matrix3d values keep only their 2D components.
func ParseMatrix(s string) (Matrix2D, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return Identity(), nil
	}

	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Identity(), fmt.Errorf("parse transform %q: not a matrix", s)
	}
	fn := strings.TrimSpace(s[:open])
	parts := strings.Split(s[open+1:len(s)-1], ",")

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Identity(), fmt.Errorf("parse transform %q: %w", s, err)
		}
		values[i] = v
	}

	switch {
	case fn == "matrix" && len(values) == 6:
		return Matrix2D{values[0], values[1], values[2], values[3], values[4], values[5]}, nil
	case fn == "matrix3d" && len(values) == 16:
		return Matrix2D{values[0], values[1], values[4], values[5], values[12], values[13]}, nil
	default:
		return Identity(), fmt.Errorf("parse transform %q: unsupported function %q with %d values", s, fn, len(values))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
