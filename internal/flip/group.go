package flip

import (
	"sync"
	"time"

	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/registry"
)

// Group animates every identified direct child of a container. Children
// that start an animation in the same cycle are staggered in tree order,
// and OnComplete runs once per cycle.
type Group struct {
	s         *Session
	cfg       settings
	container *tracker

	mu        sync.Mutex
	children  map[string]*tracker
	order     []string
	slot      int
	cycle     int
	lastFired int
}

// Group tracks the children of the element with FlipID containerID.
func (s *Session) Group(containerID string, o Options) (*Group, error) {
	cfg, err := o.resolve(s.defaults)
	if err != nil {
		return nil, err
	}

	g := &Group{
		s:        s,
		cfg:      cfg,
		children: make(map[string]*tracker),
	}
	g.container = newTracker(s, containerID, cfg)
	g.container.passive = true
	s.add(g)
	return g, nil
}

// ContainerID returns the FlipID of the container.
func (g *Group) ContainerID() string { return g.container.ID() }

// ContainerRect returns the last measured layout rect of the container.
func (g *Group) ContainerRect() (geometry.Rect, bool) {
	return g.s.positions.Get(g.container.ID())
}

// Children returns the tracked child FlipIDs in tree order.
func (g *Group) Children() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// State returns the state of the child with the given FlipID.
func (g *Group) State(childID string) State {
	g.mu.Lock()
	t, ok := g.children[childID]
	g.mu.Unlock()
	if !ok {
		return Idle
	}
	return t.State()
}

// Capture records the geometry of the container and its children ahead of
// a mutation.
func (g *Group) Capture() { g.capture() }

// Commit runs the cycle for the group alone and flushes the session
// scheduler.
func (g *Group) Commit() { g.s.commit(g) }

// Retarget switches the group to another container. Every child is
// forgotten and captured again against the new container.
func (g *Group) Retarget(containerID string) {
	if containerID == g.container.ID() {
		return
	}
	g.container.retarget(containerID)

	g.mu.Lock()
	old := g.trackers()
	g.children = make(map[string]*tracker)
	g.order = nil
	g.mu.Unlock()
	for _, t := range old {
		t.forget()
	}

	g.capture()
}

// Pause pauses every running child animation.
func (g *Group) Pause() {
	for _, t := range g.snapshot() {
		t.pause()
	}
}

// Resume resumes every paused child animation.
func (g *Group) Resume() {
	for _, t := range g.snapshot() {
		t.resume()
	}
}

// Close stops tracking the container and its children.
func (g *Group) Close() {
	g.container.forget()
	for _, t := range g.snapshot() {
		t.forget()
	}
	g.s.remove(g)
}

func (g *Group) capture() {
	g.sync()
	g.container.capture()
	for _, t := range g.snapshot() {
		t.capture()
	}
}

func (g *Group) schedule() {
	g.sync()

	g.mu.Lock()
	g.slot = 0
	g.cycle++
	g.mu.Unlock()

	g.container.schedule()
	for _, t := range g.snapshot() {
		t.schedule()
	}
}

// sync reconciles the child trackers with the container's current
// children. Vanished children are forgotten.
func (g *Group) sync() {
	el, ok := g.container.lookup()
	if !ok {
		return
	}

	var ids []string
	seen := make(map[string]bool)
	for _, child := range el.Children() {
		id := child.FlipID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var gone []*tracker
	g.mu.Lock()
	for id, t := range g.children {
		if !seen[id] {
			gone = append(gone, t)
			delete(g.children, id)
		}
	}
	for _, id := range ids {
		if _, ok := g.children[id]; !ok {
			g.children[id] = g.newChild(id)
		}
	}
	g.order = ids
	g.mu.Unlock()

	for _, t := range gone {
		t.forget()
	}
}

func (g *Group) newChild(id string) *tracker {
	t := newTracker(g.s, id, g.cfg)
	t.delay = g.nextDelay
	t.started = g.started
	return t
}

// nextDelay is called once per child that actually starts animating, in
// render order, so only the animating subset is staggered.
func (g *Group) nextDelay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.cfg.delay + g.cfg.stagger*time.Duration(g.slot)
	g.slot++
	return d
}

func (g *Group) started(h *registry.Handle) {
	g.mu.Lock()
	cycle := g.cycle
	g.mu.Unlock()
	h.OnComplete(func() { g.finished(cycle) })
}

func (g *Group) finished(cycle int) {
	g.mu.Lock()
	if cycle <= g.lastFired {
		g.mu.Unlock()
		return
	}
	g.lastFired = cycle
	g.mu.Unlock()

	if g.cfg.onComplete != nil {
		g.cfg.onComplete()
	}
}

func (g *Group) snapshot() []*tracker {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.trackers()
}

// trackers lists the children in tree order. g.mu must be held.
func (g *Group) trackers() []*tracker {
	out := make([]*tracker, 0, len(g.order))
	for _, id := range g.order {
		if t, ok := g.children[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
