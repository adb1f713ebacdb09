//go:build js && wasm

// Package dom implements the host interfaces on top of the browser DOM and
// the Web Animations API. Elements are found through data-flip-root-id and
// data-flip-id attributes.
package dom

import (
	"fmt"
	"log/slog"
	"sync"

	"syscall/js"

	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/keyframes"
)

// RenderEvent is dispatched on window when the engine asks for a render.
const RenderEvent = "flip:render"

// Tree is the document seen through flip attributes.
type Tree struct {
	win js.Value
	doc js.Value
}

var _ host.Tree = (*Tree)(nil)

func New() *Tree {
	return &Tree{
		win: js.Global(),
		doc: js.Global().Get("document"),
	}
}

func (t *Tree) Query(rootID string) []host.Element {
	list := t.doc.Call("querySelectorAll", fmt.Sprintf(`[data-flip-root-id=%q] [data-flip-id]`, rootID))
	n := list.Length()
	out := make([]host.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Element{v: list.Index(i), win: t.win})
	}
	return out
}

func (t *Tree) Lookup(flipID string) (host.Element, bool) {
	v := t.doc.Call("querySelector", fmt.Sprintf(`[data-flip-id=%q]`, flipID))
	if v.IsNull() || v.IsUndefined() {
		return nil, false
	}
	return &Element{v: v, win: t.win}, true
}

func (t *Tree) RequestFrame(fn func()) func() {
	var (
		once sync.Once
		cb   js.Func
	)
	release := func() { once.Do(cb.Release) }
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		release()
		fn()
		return nil
	})
	id := t.win.Call("requestAnimationFrame", cb)
	return func() {
		t.win.Call("cancelAnimationFrame", id)
		release()
	}
}

// ForceRender dispatches RenderEvent on window.
func (t *Tree) ForceRender() {
	ev := t.win.Get("CustomEvent").New(RenderEvent)
	t.win.Call("dispatchEvent", ev)
}

// Element wraps a DOM element.
type Element struct {
	v   js.Value
	win js.Value
}

var _ host.Element = (*Element)(nil)

func (e *Element) FlipID() string { return flipIDOf(e.v) }

func (e *Element) Rect() geometry.Rect {
	r := e.v.Call("getBoundingClientRect")
	return geometry.Rect{
		X:      r.Get("left").Float(),
		Y:      r.Get("top").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

func (e *Element) Style() host.Style {
	cs := e.win.Call("getComputedStyle", e.v)
	m, err := geometry.ParseMatrix(cs.Get("transform").String())
	if err != nil {
		slog.Debug("unparseable computed transform", "flip_id", e.FlipID(), "error", err)
		m = geometry.Identity()
	}
	return host.Style{
		BgColor:   cs.Get("backgroundColor").String(),
		Transform: m,
		Width:     e.v.Get("offsetWidth").Float(),
		Height:    e.v.Get("offsetHeight").Float(),
	}
}

func (e *Element) SetTransform(m geometry.Matrix2D, origin geometry.Origin) {
	style := e.v.Get("style")
	style.Set("transformOrigin", origin.CSS())
	style.Set("transform", m.String())
}

func (e *Element) ClearTransform() {
	style := e.v.Get("style")
	style.Set("transform", "")
	style.Set("transformOrigin", "")
}

// Animate builds an idle Animation over a KeyframeEffect; Play starts it.
func (e *Element) Animate(frames []keyframes.Keyframe, timing host.Timing) host.Animation {
	data, err := keyframes.ToJSON(frames)
	if err != nil {
		slog.Warn("encode keyframes", "flip_id", e.FlipID(), "error", err)
		data = "[]"
	}
	parsed := js.Global().Get("JSON").Call("parse", data)

	fill := timing.Fill
	if fill == "" {
		fill = "none"
	}
	opts := map[string]interface{}{
		"duration": float64(timing.Duration.Microseconds()) / 1000,
		"delay":    float64(timing.Delay.Microseconds()) / 1000,
		"easing":   timing.Easing,
		"fill":     fill,
	}

	e.v.Get("style").Set("transformOrigin", timing.Origin.CSS())
	effect := js.Global().Get("KeyframeEffect").New(e.v, parsed, opts)
	anim := js.Global().Get("Animation").New(effect, e.win.Get("document").Get("timeline"))
	return &Animation{v: anim}
}

func (e *Element) Children() []host.Element {
	list := e.v.Get("children")
	n := list.Length()
	out := make([]host.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Element{v: list.Index(i), win: e.win})
	}
	return out
}

// Animation wraps a Web Animations API Animation.
type Animation struct {
	v js.Value

	mu        sync.Mutex
	listeners []func(host.FinishEvent)
	onFinish  js.Func
	bound     bool
}

var _ host.Animation = (*Animation)(nil)

func (a *Animation) PlayState() host.PlayState {
	switch a.v.Get("playState").String() {
	case "running":
		return host.Running
	case "paused":
		return host.Paused
	case "finished":
		return host.Finished
	default:
		return host.Idle
	}
}

func (a *Animation) Play()   { a.v.Call("play") }
func (a *Animation) Pause()  { a.v.Call("pause") }
func (a *Animation) Cancel() { a.v.Call("cancel") }
func (a *Animation) Finish() { a.v.Call("finish") }

// OnFinish listens for the finish event. The event target is reported as
// the FlipID of the animated element.
func (a *Animation) OnFinish(fn func(host.FinishEvent)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
	if a.bound {
		return
	}
	a.bound = true
	a.onFinish = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		target := ""
		if effect := a.v.Get("effect"); !effect.IsNull() {
			target = flipIDOf(effect.Get("target"))
		}
		a.mu.Lock()
		listeners := make([]func(host.FinishEvent), len(a.listeners))
		copy(listeners, a.listeners)
		a.mu.Unlock()
		for _, l := range listeners {
			l(host.FinishEvent{Target: target})
		}
		return nil
	})
	a.v.Call("addEventListener", "finish", a.onFinish)
}

func flipIDOf(v js.Value) string {
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	id := v.Call("getAttribute", "data-flip-id")
	if id.IsNull() {
		return ""
	}
	return id.String()
}
