package scene

import (
	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/keyframes"
)

// Node is one element of the scene.
type Node struct {
	ID      string
	Type    string
	RootID  string // marks the node as a flip root
	Layout  geometry.Rect
	BgColor string

	scene     *Scene
	flipID    string
	parent    *Node
	children  []*Node
	transform geometry.Matrix2D // inline transform
	origin    geometry.Origin
	opacity   float64
	anim      *Animation // most recent animation, effective while active
}

var _ host.Element = (*Node)(nil)

func (n *Node) FlipID() string { return n.flipID }
func (n *Node) Parent() *Node  { return n.parent }
func (n *Node) Nodes() []*Node { return n.children }

// Inline returns the inline transform set through SetTransform.
func (n *Node) Inline() geometry.Matrix2D { return n.transform }

// Children returns the direct children as host elements.
func (n *Node) Children() []host.Element {
	out := make([]host.Element, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Rect is the layout rect with every transform on the path from the root
// applied.
func (n *Node) Rect() geometry.Rect {
	return n.world().TransformRect(n.Layout, 0, 0)
}

// Style returns the computed style, animation effects included.
func (n *Node) Style() host.Style {
	bg := n.BgColor
	if n.active() {
		if v := n.anim.background(); v != "" {
			bg = v
		}
	}
	return host.Style{
		BgColor:   bg,
		Transform: n.live(),
		Width:     n.Layout.Width,
		Height:    n.Layout.Height,
	}
}

// Opacity returns the effective opacity.
func (n *Node) Opacity() float64 {
	if n.active() {
		if v, ok := n.anim.opacity(); ok {
			return v
		}
	}
	return n.opacity
}

// SetTransform sets the inline transform.
func (n *Node) SetTransform(m geometry.Matrix2D, origin geometry.Origin) {
	n.transform = m
	n.origin = origin
}

// ClearTransform removes the inline transform.
func (n *Node) ClearTransform() {
	n.transform = geometry.Identity()
	n.origin = geometry.TopLeft
}

// Animate creates a paused-at-start animation; Play starts it.
func (n *Node) Animate(frames []keyframes.Keyframe, timing host.Timing) host.Animation {
	a := newAnimation(n, frames, timing)
	n.anim = a
	n.scene.track(a)
	return a
}

// live is the effective local transform: the running animation overrides
// the inline transform.
func (n *Node) live() geometry.Matrix2D {
	if n.active() {
		if m, ok := n.anim.matrix(); ok {
			return m
		}
	}
	return n.transform
}

func (n *Node) liveOrigin() geometry.Origin {
	if n.active() {
		if _, ok := n.anim.matrix(); ok {
			return n.anim.timing.Origin
		}
	}
	return n.origin
}

func (n *Node) active() bool {
	return n.anim != nil && n.anim.effective()
}

// world composes the transforms of n and its ancestors, each around its
// own origin.
func (n *Node) world() geometry.Matrix2D {
	o := n.liveOrigin()
	ox := n.Layout.X + o.X*n.Layout.Width
	oy := n.Layout.Y + o.Y*n.Layout.Height
	local := geometry.Translate(ox, oy).Multiply(n.live()).Multiply(geometry.Translate(-ox, -oy))
	if n.parent == nil {
		return local
	}
	return n.parent.world().Multiply(local)
}

func (n *Node) index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// walk visits n and its descendants in tree order until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
