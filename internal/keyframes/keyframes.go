// Package keyframes turns a FLIP delta into the eased sequence of transform
// steps that decays the inverse transform back to identity.
package keyframes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/inamate/flip/internal/easing"
	"github.com/inamate/flip/internal/geometry"
)

// DefaultStep samples every 5%. Sampling every 1% costs noticeably more in
// some engines and looks the same.
const DefaultStep = 0.05

// Keyframe is one step of a sequence. Transform, Background and Opacity are
// CSS values; empty fields are left out of the step. Matrix carries the same
// transform for hosts that do not parse CSS.
type Keyframe struct {
	Offset     float64           `json:"offset"`
	Transform  string            `json:"transform,omitempty"`
	Background string            `json:"background,omitempty"`
	Opacity    string            `json:"opacity,omitempty"`
	Matrix     geometry.Matrix2D `json:"-"`
}

// Sequence is the generated animation. Inverse is only filled when it was
// requested and holds the descendant counter-scale for every frame.
type Sequence struct {
	Frames  []Keyframe
	Inverse []Keyframe
}

// Params describes one generation request.
type Params struct {
	Delta     geometry.Delta
	Easing    easing.Easing
	Inverse   bool
	FromColor string
	ToColor   string
	// Steps is the number of intervals; zero means the generator default.
	Steps int
}

// Fade returns a two-frame opacity sequence.
func Fade(from, to float64) []Keyframe {
	return []Keyframe{
		{Offset: 0, Opacity: ftoa(from), Matrix: geometry.Identity()},
		{Offset: 1, Opacity: ftoa(to), Matrix: geometry.Identity()},
	}
}

// ToJSON serializes frames for hosts that take keyframes as JSON.
func ToJSON(frames []Keyframe) (string, error) {
	data, err := json.Marshal(frames)
	if err != nil {
		return "", fmt.Errorf("marshal keyframes: %w", err)
	}
	return string(data), nil
}

// build samples p with the already-rounded values in p.
func build(p Params, steps int) Sequence {
	d := p.Delta
	ease := p.Easing
	if ease.Fn == nil {
		ease = easing.Default
	}

	blend := newBlender(p.FromColor, p.ToColor)

	seq := Sequence{Frames: make([]Keyframe, 0, steps+1)}
	if p.Inverse {
		seq.Inverse = make([]Keyframe, 0, steps+1)
	}

	for i := 0; i <= steps; i++ {
		progress := float64(i) / float64(steps)
		e := ease.At(progress)

		sx := d.ScaleX + (1-d.ScaleX)*e
		sy := d.ScaleY + (1-d.ScaleY)*e
		tx := d.TranslateX - d.TranslateX*e
		ty := d.TranslateY - d.TranslateY*e

		step := geometry.Delta{TranslateX: tx, TranslateY: ty, ScaleX: sx, ScaleY: sy}
		frame := Keyframe{
			Offset:    round(progress, 1e4),
			Transform: transformCSS(step),
			Matrix:    step.Matrix(),
		}
		if blend != nil {
			frame.Background = blend.at(e, i, steps)
		}
		seq.Frames = append(seq.Frames, frame)

		if p.Inverse {
			counter := step.Counter()
			seq.Inverse = append(seq.Inverse, Keyframe{
				Offset:    frame.Offset,
				Transform: fmt.Sprintf("scale(%s, %s)", ftoa(counter.ScaleX()), ftoa(counter.ScaleY())),
				Matrix:    counter,
			})
		}
	}

	return seq
}

func transformCSS(d geometry.Delta) string {
	return fmt.Sprintf("translate(%spx, %spx) scale(%s, %s)",
		ftoa(d.TranslateX), ftoa(d.TranslateY), ftoa(d.ScaleX), ftoa(d.ScaleY))
}

func round(v, scale float64) float64 {
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // no "-0" in CSS output
	}
	return r
}

func ftoa(v float64) string {
	return strconv.FormatFloat(round(v, 1e6), 'f', -1, 64)
}
