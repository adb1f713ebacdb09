package flip

import (
	"sync"
	"time"

	"github.com/inamate/flip/internal/cache"
	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/keyframes"
	"github.com/inamate/flip/internal/registry"
)

// State is the lifecycle state of one tracked identity.
type State int

const (
	Idle State = iota
	Tracked
	Animating
	Interrupted
)

func (s State) String() string {
	switch s {
	case Tracked:
		return "tracked"
	case Animating:
		return "animating"
	case Interrupted:
		return "interrupted"
	default:
		return "idle"
	}
}

// plan is what the measure phase hands to the render phase.
type plan struct {
	delta     geometry.Delta
	fromColor string
	toColor   string
}

// tracker runs the FLIP cycle for one identity. Controller, Group and
// Shared are built from trackers and differ only in the hooks they set.
type tracker struct {
	s   *Session
	cfg settings

	// passive trackers keep the cache current but never animate.
	passive bool
	// counterScale animates direct children with inverse keyframes.
	counterScale bool
	// delay returns the start delay of the next animation.
	delay func() time.Duration
	// started runs once a new handle is registered, before it plays.
	started func(*registry.Handle)

	mu     sync.Mutex
	id     string
	state  State
	handle *registry.Handle
	next   *plan
	last   geometry.Delta // delta of the most recent animation
}

func newTracker(s *Session, id string, cfg settings) *tracker {
	return &tracker{
		s:            s,
		cfg:          cfg,
		id:           id,
		last:         geometry.NoDelta,
		counterScale: cfg.preserveScale,
		delay:        func() time.Duration { return cfg.delay },
	}
}

func (t *tracker) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

func (t *tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *tracker) Handle() *registry.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

func (t *tracker) lastDelta() geometry.Delta {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *tracker) setState(st State) {
	t.mu.Lock()
	t.state = st
	t.mu.Unlock()
}

func (t *tracker) lookup() (host.Element, bool) {
	id := t.ID()
	if id == "" {
		return nil, false
	}
	el, ok := t.s.tree.Lookup(id)
	if !ok {
		t.s.logger.Debug("flip target not found", "flip_id", id)
	}
	return el, ok
}

// inFlight returns the current handle if it has not settled yet.
func (t *tracker) inFlight() *registry.Handle {
	h := t.Handle()
	if h == nil || h.Settled() {
		return nil
	}
	return h
}

// capture records the "first" geometry right before a mutation. An element
// that is still animating is recorded where it currently appears; any other
// element is recorded without its own transform, like measure does.
func (t *tracker) capture() {
	el, ok := t.lookup()
	if !ok {
		return
	}

	if h := t.inFlight(); h != nil {
		t.s.positions.Put(t.ID(), entryOf(el, el.Rect()))
		t.interrupt(h)
		return
	}
	t.s.positions.Put(t.ID(), t.layoutEntry(el))
	if t.State() == Idle {
		t.setState(Tracked)
	}
}

// schedule queues the rest of the cycle on the session scheduler.
func (t *tracker) schedule() {
	t.s.scheduler.PreWrite(t.preWrite)
	t.s.scheduler.Measure(t.measure)
}

// preWrite finishes an in-flight animation so the measure phase sees plain
// layout. Without a prior capture the mid-flight rect is recorded first.
func (t *tracker) preWrite() {
	h := t.inFlight()
	if h == nil {
		return
	}
	if t.State() != Interrupted {
		if el, ok := t.lookup(); ok {
			t.s.positions.Put(t.ID(), entryOf(el, el.Rect()))
		}
		t.interrupt(h)
	}
	h.Finish()
}

func (t *tracker) interrupt(h *registry.Handle) {
	t.setState(Interrupted)
	t.s.logger.Debug("animation interrupted", "flip_id", h.FlipID(), "animation", h.ID())
	t.s.emit(Event{Kind: EventInterrupted, FlipID: h.FlipID(), Animation: h.ID(), Delta: t.lastDelta()})
}

func (t *tracker) measure() {
	el, ok := t.lookup()
	if !ok {
		return
	}
	id := t.ID()

	entry := t.layoutEntry(el)
	last, bg := entry.Rect, entry.Styles.BgColor

	first, tracked := t.s.positions.Entry(id)
	t.s.positions.Put(id, entry)
	if !tracked {
		t.setState(Tracked)
		return
	}

	delta := geometry.InvertAround(first.Rect, last, t.cfg.origin)
	colorChanged := t.cfg.animateColor &&
		first.Styles.BgColor != "" && bg != "" &&
		first.Styles.BgColor != bg

	if delta.IsIdentity() && !colorChanged {
		t.setState(Tracked)
		return
	}
	if t.passive {
		return
	}

	p := &plan{delta: delta}
	if colorChanged {
		p.fromColor, p.toColor = first.Styles.BgColor, bg
	}
	t.mu.Lock()
	t.next = p
	t.mu.Unlock()

	// The render phase of this flush has not run yet.
	t.s.scheduler.Render(t.render)
}

func (t *tracker) render() {
	t.mu.Lock()
	p := t.next
	t.next = nil
	t.mu.Unlock()
	if p == nil {
		return
	}

	el, ok := t.lookup()
	if !ok {
		return
	}
	id := t.ID()

	var children []host.Element
	if t.counterScale && (p.delta.ScaleX != 1 || p.delta.ScaleY != 1) {
		children = el.Children()
	}
	inverse := len(children) > 0

	params := keyframes.Params{
		Delta:     p.delta,
		Easing:    t.cfg.easing,
		Inverse:   inverse,
		FromColor: p.fromColor,
		ToColor:   p.toColor,
	}
	timing := host.Timing{
		Duration: t.cfg.duration,
		Delay:    t.delay(),
		Easing:   "linear",
		Fill:     "backwards",
		Origin:   t.cfg.origin,
	}
	if t.cfg.easing.HasCSS() && !inverse {
		params.Steps = 1
		timing.Easing = t.cfg.easing.CSS
	}
	seq := t.s.keyframes.Generate(params)

	h := registry.NewHandle(id, el.Animate(seq.Frames, timing))
	for _, child := range children {
		childTiming := timing
		childTiming.Origin = geometry.TopLeft
		h.Attach(child.Animate(seq.Inverse, childTiming))
	}
	h.OnComplete(func() { t.complete(h) })

	t.mu.Lock()
	t.handle = h
	t.state = Animating
	t.last = p.delta
	t.mu.Unlock()

	t.s.animations.Set(id, h)
	if t.started != nil {
		t.started(h)
	}
	h.Play()

	t.s.emit(Event{Kind: EventStarted, FlipID: id, Animation: h.ID(), Delta: p.delta, Delay: timing.Delay})
	t.s.logger.Debug("animation started",
		"flip_id", id,
		"animation", h.ID(),
		"translate_x", p.delta.TranslateX,
		"translate_y", p.delta.TranslateY,
		"scale_x", p.delta.ScaleX,
		"scale_y", p.delta.ScaleY,
		"delay", timing.Delay,
	)
}

// complete accepts the completion of the current handle only.
func (t *tracker) complete(h *registry.Handle) {
	t.mu.Lock()
	if t.handle != h {
		t.mu.Unlock()
		return
	}
	t.handle = nil
	t.state = Tracked
	id := t.id
	t.mu.Unlock()

	t.s.animations.DeleteIf(id, h)
	t.s.emit(Event{Kind: EventCompleted, FlipID: id, Animation: h.ID(), Delta: t.lastDelta()})
}

// retarget switches the tracked identity. Both the old and the new
// identity lose their cached geometry.
func (t *tracker) retarget(id string) {
	t.mu.Lock()
	old := t.id
	t.id = id
	t.state = Idle
	t.next = nil
	t.mu.Unlock()

	if old != "" {
		t.s.positions.Remove(old)
	}
	if id != "" {
		t.s.positions.Remove(id)
	}
}

// forget cancels any running animation and drops the cached state.
func (t *tracker) forget() {
	t.mu.Lock()
	id := t.id
	h := t.handle
	t.handle = nil
	t.next = nil
	t.state = Idle
	t.mu.Unlock()

	if h != nil {
		if !h.Settled() {
			h.Cancel()
			t.s.emit(Event{Kind: EventForgotten, FlipID: id, Animation: h.ID()})
		}
		t.s.animations.DeleteIf(id, h)
	}
	if id != "" {
		t.s.positions.Remove(id)
	}
}

func (t *tracker) pause() {
	if h := t.Handle(); h != nil {
		h.Pause()
	}
}

func (t *tracker) resume() {
	if h := t.Handle(); h != nil {
		h.Resume()
	}
}

// layoutEntry is the element's rect with its own transform removed.
func (t *tracker) layoutEntry(el host.Element) cache.Entry {
	style := el.Style()
	return cache.Entry{
		Rect:   geometry.Untransform(el.Rect(), style.Transform, t.cfg.origin),
		Styles: cache.Styles{BgColor: style.BgColor},
	}
}

func entryOf(el host.Element, r geometry.Rect) cache.Entry {
	return cache.Entry{Rect: r, Styles: cache.Styles{BgColor: el.Style().BgColor}}
}
