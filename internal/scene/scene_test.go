package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/keyframes"
	"github.com/inamate/flip/internal/typeid"
)

func newList(t *testing.T) *Scene {
	t.Helper()
	s := New()
	s.Build(s.Root(), List("list", 50, "a", "b", "c"))
	return s
}

func TestLoadAndQuery(t *testing.T) {
	s, err := Load([]byte(`{
		"type": "list", "flipId": "list", "rootId": "list",
		"rect": {"x": 0, "y": 0, "width": 100, "height": 100},
		"children": [
			{"flipId": "a", "rect": {"x": 0, "y": 0, "width": 100, "height": 50}, "bg": "#ff0000",
			 "children": [{"flipId": "a-label", "rect": {"x": 0, "y": 0, "width": 10, "height": 10}}]},
			{"rect": {"x": 0, "y": 50, "width": 100, "height": 50}}
		]
	}`))
	require.NoError(t, err)

	var ids []string
	for _, el := range s.Query("list") {
		ids = append(ids, el.FlipID())
	}
	assert.Equal(t, []string{"a", "a-label"}, ids)
	assert.Empty(t, s.Query("missing"))

	el, ok := s.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", el.Style().BgColor)
	require.NoError(t, typeid.Validate(s.Node("a").ID, typeid.PrefixNode))

	_, ok = s.Lookup("")
	assert.False(t, ok)

	_, err = Load([]byte(`{`))
	assert.Error(t, err)
}

func TestSwapExchangesLayoutAndOrder(t *testing.T) {
	s := newList(t)
	require.True(t, s.Swap("a", "b"))

	assert.Equal(t, 50.0, s.Node("a").Layout.Y)
	assert.Equal(t, 0.0, s.Node("b").Layout.Y)

	var ids []string
	for _, el := range s.Query("list") {
		ids = append(ids, el.FlipID())
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.False(t, s.Swap("a", "zzz"))
}

func TestRemove(t *testing.T) {
	s := newList(t)
	id := s.Node("b").ID
	require.True(t, s.Remove("b"))
	assert.Nil(t, s.Node("b"))
	assert.NotContains(t, s.NodesByID, id)
	assert.Len(t, s.Query("list"), 2)
	assert.False(t, s.Remove("b"))
}

func TestRectAppliesTransformsAroundOrigin(t *testing.T) {
	s := New()
	parent := s.Add(nil, "p", geometry.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	child := s.Add(parent, "c", geometry.Rect{X: 100, Y: 100, Width: 50, Height: 50})

	parent.SetTransform(geometry.Scale(2, 2), geometry.TopLeft)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 400, Height: 200}, parent.Rect())
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 100, Height: 100}, child.Rect())

	child.SetTransform(geometry.Scale(0.5, 0.5), geometry.TopLeft)
	assert.Equal(t, geometry.Rect{X: 100, Y: 100, Width: 50, Height: 50}, child.Rect())

	parent.SetTransform(geometry.Scale(2, 2), geometry.Center)
	assert.Equal(t, geometry.Rect{X: 0, Y: 50, Width: 400, Height: 200}, parent.Rect())

	parent.ClearTransform()
	assert.True(t, parent.Inline().IsIdentity())
}

func TestAnimationSamplesOnVirtualClock(t *testing.T) {
	s := newList(t)
	n := s.Node("a")
	frames := []keyframes.Keyframe{
		{Offset: 0, Transform: "translate(0px, 100px)", Matrix: geometry.Translate(0, 100), Background: "#000000"},
		{Offset: 1, Transform: "translate(0px, 0px)", Matrix: geometry.Identity(), Background: "#ffffff"},
	}
	a := n.Animate(frames, host.Timing{Duration: 100 * time.Millisecond, Easing: "linear"}).(*Animation)

	assert.Equal(t, 0.0, n.Rect().Y, "idle animations have no effect")

	var events []host.FinishEvent
	a.OnFinish(func(ev host.FinishEvent) { events = append(events, ev) })
	a.Play()
	assert.InDelta(t, 100, n.Rect().Y, 1e-9)
	assert.Equal(t, "#000000", n.Style().BgColor)

	s.Advance(25 * time.Millisecond)
	assert.InDelta(t, 75, n.Rect().Y, 1e-9)

	a.Pause()
	s.Advance(50 * time.Millisecond)
	assert.InDelta(t, 75, n.Rect().Y, 1e-9)

	a.Play()
	s.Advance(75 * time.Millisecond)
	assert.Equal(t, host.Finished, a.PlayState())
	assert.Equal(t, []host.FinishEvent{{Target: "a"}}, events)
	assert.Equal(t, 0.0, n.Rect().Y)
	assert.Empty(t, n.Style().BgColor)
}

func TestAnimationDelayHonorsFill(t *testing.T) {
	s := newList(t)
	frames := []keyframes.Keyframe{
		{Offset: 0, Transform: "x", Matrix: geometry.Translate(10, 0)},
		{Offset: 1, Transform: "x", Matrix: geometry.Identity()},
	}

	plain := s.Node("a").Animate(frames, host.Timing{Duration: time.Second, Delay: time.Second})
	plain.Play()
	assert.Equal(t, 0.0, s.Node("a").Rect().X)

	held := s.Node("b").Animate(frames, host.Timing{Duration: time.Second, Delay: time.Second, Fill: "backwards"})
	held.Play()
	assert.Equal(t, 10.0, s.Node("b").Rect().X)
}

func TestAnimationFinishAndCancel(t *testing.T) {
	s := newList(t)
	frames := keyframes.Fade(0, 1)
	a := s.Node("a").Animate(frames, host.Timing{Duration: time.Second}).(*Animation)

	finished := 0
	a.OnFinish(func(host.FinishEvent) { finished++ })
	a.Play()
	s.Advance(500 * time.Millisecond)
	assert.InDelta(t, 0.5, s.Node("a").Opacity(), 1e-9)

	a.Finish()
	a.Finish()
	assert.Equal(t, 1, finished)
	assert.Equal(t, 1.0, s.Node("a").Opacity())

	b := s.Node("b").Animate(frames, host.Timing{Duration: time.Second})
	b.Play()
	b.Cancel()
	assert.Equal(t, host.Idle, b.PlayState())
	s.Advance(2 * time.Second)
	assert.Equal(t, host.Idle, b.PlayState())
}

func TestRequestFrameAndRender(t *testing.T) {
	s := New()
	ran := 0
	s.RequestFrame(func() { ran++ })
	cancel := s.RequestFrame(func() { ran += 10 })
	cancel()
	s.RequestFrame(func() {
		s.RequestFrame(func() { ran += 100 })
	})
	assert.Equal(t, 2, s.PendingFrames())

	s.Advance(16 * time.Millisecond)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, s.PendingFrames())

	s.Step(32*time.Millisecond, 16*time.Millisecond)
	assert.Equal(t, 101, ran)
	assert.Equal(t, 48*time.Millisecond, s.Now())

	renders := 0
	s.OnRender(func() { renders++ })
	s.ForceRender()
	assert.Equal(t, 1, renders)
	assert.Equal(t, 1, s.Renders())
}
