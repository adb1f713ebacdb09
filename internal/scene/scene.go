// Package scene is an in-memory host tree. Layout is explicit (every node
// carries an absolute layout rect) and animations run on a virtual clock
// advanced by the caller, which makes FLIP cycles deterministic in tests
// and tools.
package scene

import (
	"sync"
	"time"

	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/typeid"
)

// Scene is the retained node tree plus its clock.
type Scene struct {
	root      *Node
	NodesByID map[string]*Node

	mu         sync.Mutex
	now        time.Duration
	animations []*Animation
	frames     map[int]func()
	frameSeq   int
	renders    int
	onRender   func()
}

var _ host.Tree = (*Scene)(nil)

// New creates a scene with an empty root node.
func New() *Scene {
	s := &Scene{
		NodesByID: make(map[string]*Node),
		frames:    make(map[int]func()),
	}
	s.root = s.newNode(nil, "", geometry.Rect{})
	s.root.Type = "root"
	return s
}

// Root returns the root node.
func (s *Scene) Root() *Node { return s.root }

// Add creates a node under parent (the scene root when nil).
func (s *Scene) Add(parent *Node, flipID string, layout geometry.Rect) *Node {
	if parent == nil {
		parent = s.root
	}
	n := s.newNode(parent, flipID, layout)
	parent.children = append(parent.children, n)
	return n
}

func (s *Scene) newNode(parent *Node, flipID string, layout geometry.Rect) *Node {
	n := &Node{
		ID:        typeid.NewNodeID(),
		Type:      "node",
		Layout:    layout,
		scene:     s,
		flipID:    flipID,
		parent:    parent,
		transform: geometry.Identity(),
		origin:    geometry.TopLeft,
		opacity:   1,
	}
	s.NodesByID[n.ID] = n
	return n
}

// Node returns the live node carrying flipID.
func (s *Scene) Node(flipID string) *Node {
	var found *Node
	s.root.walk(func(n *Node) bool {
		if n.flipID == flipID {
			found = n
			return false
		}
		return true
	})
	return found
}

// Query lists every node with a FlipID below the node marked with rootID,
// in tree order.
func (s *Scene) Query(rootID string) []host.Element {
	var root *Node
	s.root.walk(func(n *Node) bool {
		if n.RootID == rootID {
			root = n
			return false
		}
		return true
	})
	if root == nil {
		return nil
	}

	var out []host.Element
	for _, child := range root.children {
		child.walk(func(n *Node) bool {
			if n.flipID != "" {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// Lookup finds the node carrying flipID.
func (s *Scene) Lookup(flipID string) (host.Element, bool) {
	if flipID == "" {
		return nil, false
	}
	n := s.Node(flipID)
	if n == nil {
		return nil, false
	}
	return n, true
}

// RequestFrame runs fn on the next Advance.
func (s *Scene) RequestFrame(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameSeq++
	id := s.frameSeq
	s.frames[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.frames, id)
	}
}

// ForceRender counts the request and runs the OnRender hook.
func (s *Scene) ForceRender() {
	s.mu.Lock()
	s.renders++
	fn := s.onRender
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// OnRender sets the hook ForceRender runs.
func (s *Scene) OnRender(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRender = fn
}

// Renders returns how often ForceRender was called.
func (s *Scene) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Now returns the virtual clock.
func (s *Scene) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// PendingFrames returns the number of queued frame callbacks.
func (s *Scene) PendingFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Animations returns every animation created on the scene, oldest first.
func (s *Scene) Animations() []*Animation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Animation, len(s.animations))
	copy(out, s.animations)
	return out
}

// Advance moves the clock by d: running animations progress (finishing
// ones raise their events) and then the queued frame callbacks run once.
func (s *Scene) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	anims := make([]*Animation, len(s.animations))
	copy(anims, s.animations)
	s.mu.Unlock()

	for _, a := range anims {
		a.tick(d)
	}

	s.mu.Lock()
	frames := make([]func(), 0, len(s.frames))
	for id := 1; id <= s.frameSeq; id++ {
		if fn, ok := s.frames[id]; ok {
			frames = append(frames, fn)
			delete(s.frames, id)
		}
	}
	s.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
}

// Step advances the clock in increments of frame for total.
func (s *Scene) Step(total, frame time.Duration) {
	for total > 0 {
		d := min(frame, total)
		s.Advance(d)
		total -= d
	}
}

func (s *Scene) track(a *Animation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animations = append(s.animations, a)
}

// --- Mutations ---

// Move sets the layout rect of the node carrying flipID.
func (s *Scene) Move(flipID string, layout geometry.Rect) bool {
	n := s.Node(flipID)
	if n == nil {
		return false
	}
	n.Layout = layout
	return true
}

// Swap exchanges two nodes' layout rects and their places among their
// parents' children.
func (s *Scene) Swap(a, b string) bool {
	na, nb := s.Node(a), s.Node(b)
	if na == nil || nb == nil {
		return false
	}
	na.Layout, nb.Layout = nb.Layout, na.Layout

	ia, ib := na.index(), nb.index()
	pa, pb := na.parent, nb.parent
	pa.children[ia], pb.children[ib] = nb, na
	na.parent, nb.parent = pb, pa
	return true
}

// Remove detaches the node carrying flipID and its subtree.
func (s *Scene) Remove(flipID string) bool {
	n := s.Node(flipID)
	if n == nil || n.parent == nil {
		return false
	}
	p := n.parent
	i := n.index()
	p.children = append(p.children[:i], p.children[i+1:]...)
	n.parent = nil
	n.walk(func(d *Node) bool {
		delete(s.NodesByID, d.ID)
		return true
	})
	return true
}

// SetBackground sets the background color of the node carrying flipID.
func (s *Scene) SetBackground(flipID, color string) bool {
	n := s.Node(flipID)
	if n == nil {
		return false
	}
	n.BgColor = color
	return true
}

// Rename changes the FlipID of the node carrying from.
func (s *Scene) Rename(from, to string) bool {
	n := s.Node(from)
	if n == nil {
		return false
	}
	n.flipID = to
	return true
}
