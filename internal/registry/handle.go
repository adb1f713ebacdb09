package registry

import (
	"sync"

	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/typeid"
)

// Handle wraps a host animation for one FlipID. Completion is delivered
// once: finish events raised for another target are dropped, and a forced
// Finish resolves the handle synchronously so later host events are no-ops.
type Handle struct {
	id     string
	flipID string
	anim   host.Animation

	mu        sync.Mutex
	attached  []host.Animation
	callbacks []func()
	done      chan struct{}
	once      sync.Once
}

// NewHandle wraps anim, which animates the element tracked as flipID.
func NewHandle(flipID string, anim host.Animation) *Handle {
	h := &Handle{
		id:     typeid.NewAnimationID(),
		flipID: flipID,
		anim:   anim,
		done:   make(chan struct{}),
	}
	anim.OnFinish(h.handleFinish)
	return h
}

// ID returns the handle's unique id.
func (h *Handle) ID() string { return h.id }

// FlipID returns the tracked identity the handle animates.
func (h *Handle) FlipID() string { return h.flipID }

// Animation returns the wrapped host animation.
func (h *Handle) Animation() host.Animation { return h.anim }

// Attach ties descendant animations (scale correction) to the handle so
// they play, pause and finish together.
func (h *Handle) Attach(anims ...host.Animation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached = append(h.attached, anims...)
}

// OnComplete registers fn to run once when the handle completes. If it
// already has, fn runs immediately.
func (h *Handle) OnComplete(fn func()) {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		fn()
		return
	default:
	}
	h.callbacks = append(h.callbacks, fn)
	h.mu.Unlock()
}

// Done is closed when the handle completes, is finished or is cancelled.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Settled reports whether Done is closed.
func (h *Handle) Settled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Running reports whether the host animation is playing.
func (h *Handle) Running() bool { return h.anim.PlayState() == host.Running }

// Paused reports whether the host animation is paused.
func (h *Handle) Paused() bool { return h.anim.PlayState() == host.Paused }

// Play starts the animation and everything attached to it.
func (h *Handle) Play() {
	h.anim.Play()
	for _, a := range h.attachedAnims() {
		a.Play()
	}
}

// Pause pauses a running animation; other states are left alone.
func (h *Handle) Pause() {
	if !h.Running() {
		return
	}
	h.anim.Pause()
	for _, a := range h.attachedAnims() {
		if a.PlayState() == host.Running {
			a.Pause()
		}
	}
}

// Resume resumes a paused animation; other states are left alone.
func (h *Handle) Resume() {
	if !h.Paused() {
		return
	}
	h.anim.Play()
	for _, a := range h.attachedAnims() {
		if a.PlayState() == host.Paused {
			a.Play()
		}
	}
}

// Finish jumps the animation to its end state and completes the handle.
func (h *Handle) Finish() {
	for _, a := range h.attachedAnims() {
		a.Finish()
	}
	h.anim.Finish()
	h.resolve()
}

// Cancel drops the animation's effect and completes the handle.
func (h *Handle) Cancel() {
	for _, a := range h.attachedAnims() {
		a.Cancel()
	}
	h.anim.Cancel()
	h.resolve()
}

func (h *Handle) handleFinish(ev host.FinishEvent) {
	if ev.Target != h.flipID {
		return
	}
	h.resolve()
}

func (h *Handle) resolve() {
	h.once.Do(func() {
		h.mu.Lock()
		close(h.done)
		callbacks := h.callbacks
		h.callbacks = nil
		h.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
	})
}

func (h *Handle) attachedAnims() []host.Animation {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]host.Animation, len(h.attached))
	copy(out, h.attached)
	return out
}
