package flip

import (
	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/registry"
)

// Shared animates one visual element whose identity changes between
// renders, such as a thumbnail that becomes a detail view. With
// PreserveScale its children are de-warped frame by frame while it plays.
type Shared struct {
	s *Session
	t *tracker
}

// Shared creates a controller with no identity yet; Capture assigns one.
func (s *Session) Shared(o Options) (*Shared, error) {
	cfg, err := o.resolve(s.defaults)
	if err != nil {
		return nil, err
	}

	sh := &Shared{s: s}
	sh.t = newTracker(s, "", cfg)
	sh.t.counterScale = false
	sh.t.delay = s.staggerDelay(cfg)
	sh.t.started = sh.started
	s.add(sh)
	return sh, nil
}

func (sh *Shared) ID() string               { return sh.t.ID() }
func (sh *Shared) State() State             { return sh.t.State() }
func (sh *Shared) Handle() *registry.Handle { return sh.t.Handle() }
func (sh *Shared) Pause()                   { sh.t.pause() }
func (sh *Shared) Resume()                  { sh.t.resume() }

// Capture records the geometry of the element currently carrying id. When
// id differs from the previous identity, the cached geometry of both is
// dropped first so the delta is computed against the new node only.
func (sh *Shared) Capture(id string) {
	if id != sh.t.ID() {
		if h := sh.t.inFlight(); h != nil {
			h.Finish()
		}
		sh.t.retarget(id)
	}
	sh.t.capture()
}

// Commit runs the cycle for this element alone and flushes the session
// scheduler.
func (sh *Shared) Commit() { sh.s.commit(sh) }

// Close stops tracking.
func (sh *Shared) Close() {
	sh.t.forget()
	sh.s.remove(sh)
}

func (sh *Shared) capture()  { sh.t.capture() }
func (sh *Shared) schedule() { sh.t.schedule() }

func (sh *Shared) started(h *registry.Handle) {
	if sh.t.cfg.onComplete != nil {
		h.OnComplete(sh.t.cfg.onComplete)
	}
	if !sh.t.cfg.preserveScale {
		return
	}

	el, ok := sh.s.tree.Lookup(h.FlipID())
	if !ok {
		return
	}
	children := el.Children()
	if len(children) == 0 {
		return
	}
	target, ok := sh.s.positions.Get(h.FlipID())
	if !ok {
		return
	}

	counter := sh.t.lastDelta().Counter()
	for _, c := range children {
		c.SetTransform(counter, geometry.TopLeft)
	}
	sh.dewarp(el, children, target, h)
}

// dewarp keeps the children at their natural size on every host frame
// until the animation settles, then resets them.
func (sh *Shared) dewarp(el host.Element, children []host.Element, target geometry.Rect, h *registry.Handle) {
	var tick func()
	tick = func() {
		if h.Settled() {
			for _, c := range children {
				c.ClearTransform()
			}
			return
		}
		sx, sy := geometry.ScaleOf(el.Rect(), target)
		counter := geometry.Delta{ScaleX: sx, ScaleY: sy}.Counter()
		for _, c := range children {
			c.SetTransform(counter, geometry.TopLeft)
		}
		sh.s.tree.RequestFrame(tick)
	}
	sh.s.tree.RequestFrame(tick)
}
