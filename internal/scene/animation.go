package scene

import (
	"strconv"
	"time"

	"github.com/inamate/flip/internal/easing"
	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/keyframes"
)

// Animation plays a keyframe sequence on a node against the scene clock.
// Matrices and opacity are interpolated linearly between frames; the
// background holds the value of the frame last passed.
type Animation struct {
	node   *Node
	frames []keyframes.Keyframe
	timing host.Timing
	ease   easing.Easing

	state    host.PlayState
	elapsed  time.Duration // since Play, delay included
	onFinish []func(host.FinishEvent)
}

var _ host.Animation = (*Animation)(nil)

func newAnimation(n *Node, frames []keyframes.Keyframe, timing host.Timing) *Animation {
	ease, err := easing.Lookup(timing.Easing)
	if err != nil {
		ease = easing.Linear
	}
	return &Animation{
		node:   n,
		frames: frames,
		timing: timing,
		ease:   ease,
		state:  host.Idle,
	}
}

func (a *Animation) Node() *Node                  { return a.node }
func (a *Animation) Frames() []keyframes.Keyframe { return a.frames }
func (a *Animation) Timing() host.Timing          { return a.timing }
func (a *Animation) PlayState() host.PlayState    { return a.state }
func (a *Animation) Elapsed() time.Duration       { return a.elapsed }

// Play starts or resumes the animation. A finished animation restarts.
func (a *Animation) Play() {
	switch a.state {
	case host.Running:
		return
	case host.Finished:
		a.elapsed = 0
	}
	a.state = host.Running
}

func (a *Animation) Pause() {
	if a.state == host.Running || a.state == host.Idle {
		a.state = host.Paused
	}
}

// Cancel drops the effect without raising a finish event.
func (a *Animation) Cancel() {
	a.state = host.Idle
	a.elapsed = 0
}

// Finish jumps to the end and raises the finish event synchronously.
func (a *Animation) Finish() {
	if a.state == host.Finished {
		return
	}
	a.elapsed = a.timing.Delay + a.timing.Duration
	a.state = host.Finished
	a.Emit(a.node.flipID)
}

func (a *Animation) OnFinish(fn func(host.FinishEvent)) {
	a.onFinish = append(a.onFinish, fn)
}

// Emit delivers a finish event for target to every listener, the way a
// host forwards events raised by descendants.
func (a *Animation) Emit(target string) {
	listeners := make([]func(host.FinishEvent), len(a.onFinish))
	copy(listeners, a.onFinish)
	for _, fn := range listeners {
		fn(host.FinishEvent{Target: target})
	}
}

func (a *Animation) tick(d time.Duration) {
	if a.state != host.Running {
		return
	}
	a.elapsed += d
	if a.elapsed >= a.timing.Delay+a.timing.Duration {
		a.Finish()
	}
}

// effective reports whether the animation currently styles its node.
func (a *Animation) effective() bool {
	switch a.state {
	case host.Running, host.Paused:
		if a.elapsed >= a.timing.Delay {
			return true
		}
		return a.timing.Fill == "backwards" || a.timing.Fill == "both"
	case host.Finished:
		return a.timing.Fill == "forwards" || a.timing.Fill == "both"
	default:
		return false
	}
}

// progress is the eased progress through the frames.
func (a *Animation) progress() float64 {
	if a.state == host.Finished {
		return 1
	}
	local := a.elapsed - a.timing.Delay
	if local <= 0 || a.timing.Duration <= 0 {
		if a.timing.Duration <= 0 && local >= 0 {
			return 1
		}
		return 0
	}
	return a.ease.At(float64(local) / float64(a.timing.Duration))
}

// segment returns the frames around progress p and the position between
// them.
func (a *Animation) segment(p float64) (from, to keyframes.Keyframe, t float64) {
	if len(a.frames) == 0 {
		return keyframes.Keyframe{}, keyframes.Keyframe{}, 0
	}
	if p <= a.frames[0].Offset {
		return a.frames[0], a.frames[0], 0
	}
	for i := 1; i < len(a.frames); i++ {
		next := a.frames[i]
		if p <= next.Offset {
			prev := a.frames[i-1]
			span := next.Offset - prev.Offset
			if span <= 0 {
				return next, next, 0
			}
			return prev, next, (p - prev.Offset) / span
		}
	}
	last := a.frames[len(a.frames)-1]
	return last, last, 0
}

func (a *Animation) matrix() (geometry.Matrix2D, bool) {
	if len(a.frames) == 0 || a.frames[0].Transform == "" {
		return geometry.Matrix2D{}, false
	}
	from, to, t := a.segment(a.progress())
	return from.Matrix.Lerp(to.Matrix, t), true
}

func (a *Animation) background() string {
	from, to, t := a.segment(a.progress())
	if t >= 1 {
		return to.Background
	}
	return from.Background
}

func (a *Animation) opacity() (float64, bool) {
	from, to, t := a.segment(a.progress())
	if from.Opacity == "" || to.Opacity == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(from.Opacity, 64)
	if err != nil {
		return 0, false
	}
	g, err := strconv.ParseFloat(to.Opacity, 64)
	if err != nil {
		return 0, false
	}
	return f + (g-f)*t, true
}
