package flip

import (
	"errors"
	"fmt"
	"time"

	"github.com/inamate/flip/internal/easing"
	"github.com/inamate/flip/internal/geometry"
)

// ErrInvalidOption is wrapped by every option validation error.
var ErrInvalidOption = errors.New("invalid flip option")

// Options configures a controller. Zero values fall back to the session
// defaults.
type Options struct {
	Duration time.Duration
	Delay    time.Duration
	// Easing is an easing name, a CSS keyword, cubic-bezier(...) or
	// spring(frequency, damping).
	Easing string
	// Stagger is added to Delay once per animating element before this one
	// in the same cycle.
	Stagger         time.Duration
	TransformOrigin string
	// AnimateColor interpolates the background color alongside the move.
	AnimateColor bool
	// PreserveScale counter-scales direct children so their content does
	// not stretch while the element scales.
	PreserveScale bool
	// OnComplete runs when an animation finishes. Groups run it once per
	// cycle. It may run inside a flush; a Commit made from it is ignored.
	OnComplete func()
}

// DefaultOptions are used when a session is created without explicit
// defaults.
func DefaultOptions() Options {
	return Options{
		Duration:        500 * time.Millisecond,
		Easing:          "ease",
		TransformOrigin: "top left",
	}
}

// settings is Options after defaulting and parsing.
type settings struct {
	duration      time.Duration
	delay         time.Duration
	stagger       time.Duration
	easing        easing.Easing
	origin        geometry.Origin
	animateColor  bool
	preserveScale bool
	onComplete    func()
}

func (o Options) resolve(defaults Options) (settings, error) {
	if o.Duration < 0 || o.Delay < 0 || o.Stagger < 0 {
		return settings{}, fmt.Errorf("%w: durations must not be negative (duration=%s delay=%s stagger=%s)",
			ErrInvalidOption, o.Duration, o.Delay, o.Stagger)
	}

	if o.Duration == 0 {
		o.Duration = defaults.Duration
	}
	if o.Delay == 0 {
		o.Delay = defaults.Delay
	}
	if o.Stagger == 0 {
		o.Stagger = defaults.Stagger
	}
	if o.Easing == "" {
		o.Easing = defaults.Easing
	}
	if o.TransformOrigin == "" {
		o.TransformOrigin = defaults.TransformOrigin
	}

	ease := easing.Default
	if o.Easing != "" {
		var err error
		ease, err = easing.Lookup(o.Easing)
		if err != nil {
			return settings{}, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}

	origin := geometry.TopLeft
	if o.TransformOrigin != "" {
		var err error
		origin, err = geometry.ParseOrigin(o.TransformOrigin)
		if err != nil {
			return settings{}, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}

	return settings{
		duration:      o.Duration,
		delay:         o.Delay,
		stagger:       o.Stagger,
		easing:        ease,
		origin:        origin,
		animateColor:  o.AnimateColor,
		preserveScale: o.PreserveScale,
		onComplete:    o.OnComplete,
	}, nil
}
