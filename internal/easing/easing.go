// Package easing holds the timing functions used to shape FLIP keyframes,
// together with their CSS cubic-bezier equivalents where one exists.
package easing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownEasing is returned by Lookup for names it cannot resolve.
var ErrUnknownEasing = errors.New("unknown easing")

// Func maps normalized progress in [0, 1] to eased progress.
type Func func(t float64) float64

// Easing is a named timing function. CSS is empty when the curve has no
// cubic-bezier equivalent (bounce, elastic, spring), in which case it must
// be baked into sampled keyframes.
type Easing struct {
	Name string
	CSS  string
	Fn   Func
}

// At evaluates the easing at t, clamping t to [0, 1].
func (e Easing) At(t float64) float64 {
	if e.Fn == nil {
		return clamp01(t)
	}
	return e.Fn(clamp01(t))
}

// HasCSS reports whether a host can play this curve natively.
func (e Easing) HasCSS() bool {
	return e.CSS != ""
}

var Linear = Easing{Name: "linear", CSS: "linear", Fn: func(t float64) float64 { return t }}

const (
	backC1 = 1.70158
	backC2 = backC1 * 1.525
	backC3 = backC1 + 1
)

// named is the table Lookup consults first. The keyword entries mirror the
// CSS timing keywords so option values written for a browser work as-is.
var named = map[string]Easing{
	"linear": Linear,

	"ease":        cssKeyword("ease", 0.25, 0.1, 0.25, 1),
	"ease-in":     cssKeyword("ease-in", 0.42, 0, 1, 1),
	"ease-out":    cssKeyword("ease-out", 0, 0, 0.58, 1),
	"ease-in-out": cssKeyword("ease-in-out", 0.42, 0, 0.58, 1),

	"easeInQuad":    {CSS: "cubic-bezier(0.11, 0, 0.5, 0)", Fn: func(t float64) float64 { return t * t }},
	"easeOutQuad":   {CSS: "cubic-bezier(0.5, 1, 0.89, 1)", Fn: func(t float64) float64 { return t * (2 - t) }},
	"easeInOutQuad": {CSS: "cubic-bezier(0.45, 0, 0.55, 1)", Fn: easeInOutQuad},

	"easeInSine":    {CSS: "cubic-bezier(0.12, 0, 0.39, 0)", Fn: func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }},
	"easeOutSine":   {CSS: "cubic-bezier(0.61, 1, 0.88, 1)", Fn: func(t float64) float64 { return math.Sin(t * math.Pi / 2) }},
	"easeInOutSine": {CSS: "cubic-bezier(0.37, 0, 0.63, 1)", Fn: func(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 }},

	"easeInCubic":    {CSS: "cubic-bezier(0.32, 0, 0.67, 0)", Fn: func(t float64) float64 { return t * t * t }},
	"easeOutCubic":   {CSS: "cubic-bezier(0.33, 1, 0.68, 1)", Fn: func(t float64) float64 { return 1 - math.Pow(1-t, 3) }},
	"easeInOutCubic": {CSS: "cubic-bezier(0.65, 0, 0.35, 1)", Fn: easeInOutPow(3)},

	"easeInQuart":    {CSS: "cubic-bezier(0.5, 0, 0.75, 0)", Fn: func(t float64) float64 { return math.Pow(t, 4) }},
	"easeOutQuart":   {CSS: "cubic-bezier(0.25, 1, 0.5, 1)", Fn: func(t float64) float64 { return 1 - math.Pow(1-t, 4) }},
	"easeInOutQuart": {CSS: "cubic-bezier(0.76, 0, 0.24, 1)", Fn: easeInOutPow(4)},

	"easeInQuint":    {CSS: "cubic-bezier(0.64, 0, 0.78, 0)", Fn: func(t float64) float64 { return math.Pow(t, 5) }},
	"easeOutQuint":   {CSS: "cubic-bezier(0.22, 1, 0.36, 1)", Fn: func(t float64) float64 { return 1 - math.Pow(1-t, 5) }},
	"easeInOutQuint": {CSS: "cubic-bezier(0.83, 0, 0.17, 1)", Fn: easeInOutPow(5)},

	"easeInBack":    {CSS: "cubic-bezier(0.36, 0, 0.66, -0.56)", Fn: func(t float64) float64 { return backC3*t*t*t - backC1*t*t }},
	"easeOutBack":   {CSS: "cubic-bezier(0.34, 1.56, 0.64, 1)", Fn: easeOutBack},
	"easeInOutBack": {CSS: "cubic-bezier(0.68, -0.6, 0.32, 1.6)", Fn: easeInOutBack},

	"easeOutElastic": {Fn: easeOutElastic},
	"easeOutBounce":  {Fn: bounceOut},
}

// aliases keeps the short quad names used by timeline documents.
var aliases = map[string]string{
	"easeIn":    "easeInQuad",
	"easeOut":   "easeOutQuad",
	"easeInOut": "easeInOutQuad",
}

// Default is the curve keyframes use when no easing is configured; it is
// the quartic ease-out from the "performant expand and collapse" recipe.
var Default = mustLookup("easeOutQuart")

// Lookup resolves a named easing, a CSS keyword, a cubic-bezier(...) value
// or a spring(frequency, damping) value.
func Lookup(name string) (Easing, error) {
	name = strings.TrimSpace(name)
	if target, ok := aliases[name]; ok {
		name = target
	}
	if e, ok := named[name]; ok {
		e.Name = name
		return e, nil
	}

	fn, args, ok := parseCall(name)
	if !ok {
		return Easing{}, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
	}

	switch fn {
	case "cubic-bezier":
		if len(args) != 4 {
			return Easing{}, fmt.Errorf("%w: %q: cubic-bezier takes 4 values", ErrUnknownEasing, name)
		}
		if args[0] < 0 || args[0] > 1 || args[2] < 0 || args[2] > 1 {
			return Easing{}, fmt.Errorf("%w: %q: x values must be within [0, 1]", ErrUnknownEasing, name)
		}
		css := fmt.Sprintf("cubic-bezier(%s, %s, %s, %s)", ftoa(args[0]), ftoa(args[1]), ftoa(args[2]), ftoa(args[3]))
		return Easing{Name: css, CSS: css, Fn: CubicBezier(args[0], args[1], args[2], args[3])}, nil

	case "spring":
		if len(args) != 2 || args[0] <= 0 || args[1] <= 0 {
			return Easing{}, fmt.Errorf("%w: %q: spring takes a positive frequency and damping", ErrUnknownEasing, name)
		}
		return Easing{
			Name: fmt.Sprintf("spring(%s, %s)", ftoa(args[0]), ftoa(args[1])),
			Fn:   Spring(args[0], args[1]),
		}, nil
	}

	return Easing{}, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
}

// Names lists every named easing, sorted.
func Names() []string {
	names := make([]string, 0, len(named)+len(aliases))
	for n := range named {
		names = append(names, n)
	}
	for n := range aliases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustLookup(name string) Easing {
	e, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return e
}

func cssKeyword(name string, x1, y1, x2, y2 float64) Easing {
	return Easing{CSS: name, Fn: CubicBezier(x1, y1, x2, y2)}
}

func parseCall(s string) (string, []float64, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	args := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, false
		}
		args[i] = v
	}
	return strings.TrimSpace(s[:open]), args, true
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func easeInOutPow(p float64) Func {
	return func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2, p-1) * math.Pow(t, p)
		}
		return 1 - math.Pow(-2*t+2, p)/2
	}
}

func easeOutBack(t float64) float64 {
	t2 := t - 1
	return 1 + backC3*t2*t2*t2 + backC1*t2*t2
}

func easeInOutBack(t float64) float64 {
	if t < 0.5 {
		return (math.Pow(2*t, 2) * ((backC2+1)*2*t - backC2)) / 2
	}
	return (math.Pow(2*t-2, 2)*((backC2+1)*(t*2-2)+backC2) + 2) / 2
}

func easeOutElastic(t float64) float64 {
	if t == 0 || t == 1 {
		return t
	}
	c4 := (2 * math.Pi) / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

// bounceOut implements the standard 4-segment parabolic bounce curve.
func bounceOut(t float64) float64 {
	n1 := 7.5625
	d1 := 2.75
	if t < 1/d1 {
		return n1 * t * t
	} else if t < 2/d1 {
		t -= 1.5 / d1
		return n1*t*t + 0.75
	} else if t < 2.5/d1 {
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	} else {
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}
