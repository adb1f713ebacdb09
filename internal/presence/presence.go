// Package presence keeps an element rendered while it animates out. The
// variant flips immediately; the rendered flag only drops once the exit
// animation has finished, at which point the host is asked to render again
// so it can detach the element.
package presence

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inamate/flip/internal/flip"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/keyframes"
	"github.com/inamate/flip/internal/registry"
)

// ErrInvalidVariant is returned for variants other than visible and hidden.
var ErrInvalidVariant = errors.New("invalid presence variant")

type Variant string

const (
	Visible Variant = "visible"
	Hidden  Variant = "hidden"
)

// ParseVariant accepts "visible" and "hidden".
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case Visible, Hidden:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidVariant, s, Visible, Hidden)
}

// Options configures the enter and exit animations. Empty frame lists
// fall back to a fade.
type Options struct {
	Duration           time.Duration
	Enter              []keyframes.Keyframe
	Exit               []keyframes.Keyframe
	AnimateFirstRender bool
}

// DefaultDuration is used when Options.Duration is zero.
const DefaultDuration = 700 * time.Millisecond

// Deferred is the presence state of one element.
type Deferred struct {
	s      *flip.Session
	flipID string
	opts   Options

	mu        sync.Mutex
	variant   Variant
	rendered  bool
	didRender bool
	exit      *registry.Handle
}

// New creates the presence state of flipID, starting in initial.
func New(s *flip.Session, flipID string, initial string, o Options) (*Deferred, error) {
	v, err := ParseVariant(initial)
	if err != nil {
		return nil, err
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if len(o.Enter) == 0 {
		o.Enter = keyframes.Fade(0, 1)
	}
	if len(o.Exit) == 0 {
		o.Exit = keyframes.Fade(1, 0)
	}
	return &Deferred{
		s:        s,
		flipID:   flipID,
		opts:     o,
		variant:  v,
		rendered: v == Visible,
	}, nil
}

func (d *Deferred) Variant() Variant {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.variant
}

// IsRendered reports whether the host should keep the element mounted.
func (d *Deferred) IsRendered() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rendered
}

// Toggle flips the variant. Becoming visible renders the element at once;
// becoming hidden keeps it rendered until the exit animation ends.
func (d *Deferred) Toggle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.variant == Hidden {
		d.variant = Visible
		d.rendered = true
		return
	}
	d.variant = Hidden
}

// SetRendered overrides the rendered flag.
func (d *Deferred) SetRendered(state string) error {
	v, err := ParseVariant(state)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.rendered = v == Visible
	d.mu.Unlock()
	return nil
}

// Apply plays the animation for the current variant. Call it after the
// host rendered the variant. The first call only animates when
// AnimateFirstRender is set.
//
// An exit is registered under the element's FlipID, so it supersedes a
// FLIP move still in flight for the same element: the move jumps to its
// end and the element fades out from its final position.
func (d *Deferred) Apply() {
	el, ok := d.s.Tree().Lookup(d.flipID)
	if !ok {
		d.s.Logger().Debug("presence target not found", "flip_id", d.flipID)
		return
	}

	d.mu.Lock()
	first := !d.didRender
	d.didRender = true
	variant := d.variant
	prev := d.exit
	d.exit = nil
	d.mu.Unlock()

	if prev != nil {
		if !prev.Settled() {
			prev.Cancel()
		}
		d.s.Animations().DeleteIf(d.flipID, prev)
	}

	timing := host.Timing{Duration: d.opts.Duration, Easing: "linear", Fill: "forwards"}
	if first {
		if d.opts.AnimateFirstRender && variant == Visible {
			el.Animate(d.opts.Enter, timing).Play()
		}
		return
	}

	if variant == Visible {
		el.Animate(d.opts.Enter, timing).Play()
		return
	}

	h := registry.NewHandle(d.flipID, el.Animate(d.opts.Exit, timing))
	h.OnComplete(func() { d.exited(h) })

	d.mu.Lock()
	d.exit = h
	d.mu.Unlock()

	d.s.Animations().Set(d.flipID, h)
	h.Play()
}

func (d *Deferred) exited(h *registry.Handle) {
	d.mu.Lock()
	if d.exit != h || d.variant != Hidden {
		d.mu.Unlock()
		return
	}
	d.exit = nil
	d.rendered = false
	d.mu.Unlock()

	d.s.Animations().DeleteIf(d.flipID, h)
	d.s.Tree().ForceRender()
}
