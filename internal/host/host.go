// Package host declares what the FLIP engine needs from the tree it animates:
// element lookup, measurement, style writes, an animation primitive and a
// frame clock. Implementations live in internal/scene (headless) and
// internal/dom (browser).
package host

import (
	"time"

	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/keyframes"
)

// Tree is the host's visual tree.
type Tree interface {
	// Query lists every element carrying a FlipID under the logical root,
	// in tree order.
	Query(rootID string) []Element
	// Lookup finds the single live element with the given FlipID.
	Lookup(flipID string) (Element, bool)
	// RequestFrame runs fn before the next paint. The returned function
	// cancels the request.
	RequestFrame(fn func()) (cancel func())
	// ForceRender asks the host to reconcile the tree again.
	ForceRender()
}

// Style is the computed style snapshot the engine reads.
type Style struct {
	BgColor   string
	Transform geometry.Matrix2D
	// Width and Height are the layout size, without transforms.
	Width  float64
	Height float64
}

// Element is one node of the host tree.
type Element interface {
	FlipID() string
	// Rect is the measured bounding box, live transforms included.
	Rect() geometry.Rect
	Style() Style
	// SetTransform writes a transform immediately, without transition.
	SetTransform(m geometry.Matrix2D, origin geometry.Origin)
	ClearTransform()
	Animate(frames []keyframes.Keyframe, timing Timing) Animation
	Children() []Element
}

// Timing mirrors the Web Animations timing dictionary.
type Timing struct {
	Duration time.Duration
	Delay    time.Duration
	Easing   string
	Fill     string
	Origin   geometry.Origin
}

// PlayState mirrors Animation.playState.
type PlayState int

const (
	Idle PlayState = iota
	Running
	Paused
	Finished
)

func (s PlayState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// FinishEvent is delivered when an animation completes. Target is the
// FlipID of the element the event was raised for, which can differ from the
// animated element when a host forwards descendant events.
type FinishEvent struct {
	Target string
}

// Animation is a running host animation.
type Animation interface {
	PlayState() PlayState
	Play()
	Pause()
	Cancel()
	// Finish jumps to the end state synchronously.
	Finish()
	OnFinish(fn func(FinishEvent))
}
