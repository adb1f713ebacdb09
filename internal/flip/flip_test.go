package flip

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/flip/internal/easing"
	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/registry"
	"github.com/inamate/flip/internal/scene"
)

// row lays out items of 50x50 side by side, the first at x = 100.
func row(ids ...string) *scene.Scene {
	sc := scene.New()
	root := sc.Build(sc.Root(), scene.NodeSpec{
		FlipID: "row",
		RootID: "row",
		Rect:   geometry.Rect{Width: 1000, Height: 50},
	})
	for i, id := range ids {
		sc.Add(root, id, geometry.Rect{X: 100 + 50*float64(i), Width: 50, Height: 50})
	}
	return sc
}

func newSession(t *testing.T, sc *scene.Scene, opts ...SessionOption) (*Session, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]SessionOption{WithLogger(logger)}, opts...)
	return NewSession("row", sc, opts...), &buf
}

func animOf(t *testing.T, c interface{ Handle() *registry.Handle }) *scene.Animation {
	t.Helper()
	h := c.Handle()
	require.NotNil(t, h, "expected an animation")
	return h.Animation().(*scene.Animation)
}

func TestListReorder(t *testing.T) {
	sc := row("first", "second")
	s, _ := newSession(t, sc)

	first, err := s.Register("first", Options{})
	require.NoError(t, err)
	second, err := s.Register("second", Options{})
	require.NoError(t, err)

	s.Commit()
	assert.Equal(t, Tracked, first.State())
	assert.Empty(t, sc.Animations(), "first sight never animates")

	s.Capture()
	require.True(t, sc.Swap("first", "second"))
	s.Commit()

	require.Equal(t, Animating, first.State())
	require.Equal(t, Animating, second.State())

	a := animOf(t, first)
	assert.Equal(t, "translate(-50px, 0px) scale(1, 1)", a.Frames()[0].Transform)
	assert.Equal(t, "translate(0px, 0px) scale(1, 1)", a.Frames()[len(a.Frames())-1].Transform)
	assert.Equal(t, "ease", a.Timing().Easing)
	assert.Len(t, a.Frames(), 2)

	b := animOf(t, second)
	assert.Equal(t, "translate(50px, 0px) scale(1, 1)", b.Frames()[0].Transform)

	// Frame zero shows both elements where they were.
	assert.InDelta(t, 100, sc.Node("first").Rect().X, 1e-6)
	assert.InDelta(t, 150, sc.Node("second").Rect().X, 1e-6)
	assert.Equal(t, 2, s.Animations().Len())

	sc.Advance(500 * time.Millisecond)
	assert.Equal(t, Tracked, first.State())
	assert.Nil(t, first.Handle())
	assert.Equal(t, 0, s.Animations().Len())
	assert.Equal(t, 150.0, sc.Node("first").Rect().X)
}

func TestZeroDeltaSkipsAnimation(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{})
	require.NoError(t, err)

	for range 3 {
		s.Capture()
		s.Commit()
	}

	assert.Equal(t, Tracked, c.State())
	assert.Nil(t, c.Handle())
	assert.Empty(t, sc.Animations())

	rect, ok := s.Positions().Get("a")
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 100, Width: 50, Height: 50}, rect)
	assert.Equal(t, 1, s.Positions().Len())
}

func TestInterruptionContinuesFromMidFlight(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc)
	completed := 0
	c, err := s.Register("a", Options{Easing: "linear", OnComplete: func() { completed++ }})
	require.NoError(t, err)
	s.Commit()

	sc.Move("a", geometry.Rect{X: 200, Width: 50, Height: 50})
	s.Commit()
	old := c.Handle()
	require.NotNil(t, old)

	sc.Advance(250 * time.Millisecond)
	assert.InDelta(t, 150, sc.Node("a").Rect().X, 1e-6)

	s.Capture()
	assert.Equal(t, Interrupted, c.State())
	rect, _ := s.Positions().Get("a")
	assert.InDelta(t, 150, rect.X, 1e-6)

	sc.Move("a", geometry.Rect{X: 400, Width: 50, Height: 50})
	s.Commit()

	assert.True(t, old.Settled())
	assert.Equal(t, 1, completed, "the interrupted animation completes once")
	next := c.Handle()
	require.NotNil(t, next)
	assert.NotEqual(t, old.ID(), next.ID())
	assert.Equal(t, Animating, c.State())

	got, ok := s.Animations().Get("a")
	require.True(t, ok)
	assert.Same(t, next, got)

	// No jump: the new animation starts where the old one was.
	assert.InDelta(t, 150, sc.Node("a").Rect().X, 1e-6)
	assert.Equal(t, "translate(-250px, 0px) scale(1, 1)", animOf(t, c).Frames()[0].Transform)

	sc.Advance(time.Second)
	assert.Equal(t, 2, completed)
	assert.Equal(t, 400.0, sc.Node("a").Rect().X)
}

func TestInterruptionWithoutCapture(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{Easing: "linear"})
	require.NoError(t, err)
	s.Commit()

	sc.Move("a", geometry.Rect{X: 200, Width: 50, Height: 50})
	s.Commit()
	old := c.Handle()
	sc.Advance(250 * time.Millisecond)

	sc.Move("a", geometry.Rect{X: 400, Width: 50, Height: 50})
	s.Commit()

	assert.True(t, old.Settled())
	require.NotNil(t, c.Handle())
	// Measured after the mutation with the old animation still applied.
	assert.InDelta(t, 350, sc.Node("a").Rect().X, 1e-6)
	assert.Equal(t, 1, s.Animations().Len())
}

func TestSessionStaggerCountsOnlyAnimating(t *testing.T) {
	sc := row("a", "b", "c", "d")
	s, _ := newSession(t, sc)
	var ctrls []*Controller
	for _, id := range []string{"a", "b", "c", "d"} {
		c, err := s.Register(id, Options{Stagger: 50 * time.Millisecond, Delay: 10 * time.Millisecond})
		require.NoError(t, err)
		ctrls = append(ctrls, c)
	}
	s.Commit()

	s.Capture()
	sc.Move("a", geometry.Rect{X: 0, Width: 50, Height: 50})
	sc.Move("c", geometry.Rect{X: 0, Y: 100, Width: 50, Height: 50})
	sc.Move("d", geometry.Rect{X: 0, Y: 200, Width: 50, Height: 50})
	s.Commit()

	assert.Equal(t, 10*time.Millisecond, animOf(t, ctrls[0]).Timing().Delay)
	assert.Nil(t, ctrls[1].Handle())
	assert.Equal(t, 60*time.Millisecond, animOf(t, ctrls[2]).Timing().Delay)
	assert.Equal(t, 110*time.Millisecond, animOf(t, ctrls[3]).Timing().Delay)

	// Slots restart with every flush.
	sc.Advance(time.Second)
	s.Capture()
	sc.Move("b", geometry.Rect{X: 0, Y: 300, Width: 50, Height: 50})
	s.Commit()
	assert.Equal(t, 10*time.Millisecond, animOf(t, ctrls[1]).Timing().Delay)
}

func TestBubbledFinishEventsAreIgnored(t *testing.T) {
	sc := row("a")
	sc.Add(sc.Node("a"), "a-label", geometry.Rect{X: 100, Width: 10, Height: 10})
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{})
	require.NoError(t, err)
	s.Commit()

	sc.Move("a", geometry.Rect{X: 300, Width: 50, Height: 50})
	s.Commit()
	a := animOf(t, c)
	h := c.Handle()

	a.Emit("a-label")
	assert.False(t, h.Settled())
	assert.Equal(t, Animating, c.State())

	a.Emit("a")
	a.Emit("a")
	assert.True(t, h.Settled())
	assert.Equal(t, Tracked, c.State())
}

func TestMissingTargetIsSkipped(t *testing.T) {
	sc := row("a")
	s, logs := newSession(t, sc)
	c, err := s.Register("ghost", Options{})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.Capture()
		s.Commit()
	})
	assert.Equal(t, Idle, c.State())
	assert.False(t, s.Positions().IsTracked("ghost"))
	assert.Contains(t, logs.String(), "flip target not found")
	assert.Contains(t, logs.String(), "flip_id=ghost")
}

func TestRemovedTargetKeepsCacheAndSkips(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{})
	require.NoError(t, err)
	s.Commit()

	require.True(t, sc.Remove("a"))
	s.Capture()
	s.Commit()
	assert.Nil(t, c.Handle())
	assert.True(t, s.Positions().IsTracked("a"))
}

func TestInvalidOptions(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc)

	tests := []struct {
		name string
		id   string
		opts Options
	}{
		{"negative duration", "a", Options{Duration: -time.Second}},
		{"negative delay", "a", Options{Delay: -time.Millisecond}},
		{"negative stagger", "a", Options{Stagger: -time.Millisecond}},
		{"unknown easing", "a", Options{Easing: "wobbly"}},
		{"bad origin", "a", Options{TransformOrigin: "sideways"}},
		{"empty id", "", Options{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(tc.id, tc.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}

	_, err := s.Register("a", Options{Easing: "wobbly"})
	assert.True(t, errors.Is(err, easing.ErrUnknownEasing))

	_, err = s.Register("a", Options{})
	require.NoError(t, err)
	_, err = s.Register("a", Options{})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = s.Group("row", Options{Duration: -1})
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = s.Shared(Options{Easing: "nope"})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestAnimateColor(t *testing.T) {
	sc := row("a", "b")
	sc.SetBackground("a", "#ff0000")
	sc.SetBackground("b", "#ff0000")
	s, _ := newSession(t, sc)
	colored, err := s.Register("a", Options{AnimateColor: true})
	require.NoError(t, err)
	plain, err := s.Register("b", Options{})
	require.NoError(t, err)
	s.Commit()

	s.Capture()
	sc.SetBackground("a", "#0000ff")
	sc.SetBackground("b", "#0000ff")
	s.Commit()

	assert.Nil(t, plain.Handle(), "color changes are opt-in")

	frames := animOf(t, colored).Frames()
	assert.Equal(t, "#ff0000", frames[0].Background)
	assert.Equal(t, "#0000ff", frames[len(frames)-1].Background)
	assert.Equal(t, "#ff0000", sc.Node("a").Style().BgColor)

	entry, ok := s.Positions().Entry("a")
	require.True(t, ok)
	assert.Equal(t, "#0000ff", entry.Styles.BgColor)
}

func TestPreserveScaleAttachesInverseAnimations(t *testing.T) {
	sc := row("a")
	sc.Add(sc.Node("a"), "a-label", geometry.Rect{X: 100, Width: 10, Height: 10})
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{PreserveScale: true, Easing: "easeOutQuart"})
	require.NoError(t, err)
	s.Commit()

	s.Capture()
	sc.Move("a", geometry.Rect{X: 100, Width: 100, Height: 100})
	s.Commit()

	a := animOf(t, c)
	assert.Equal(t, "linear", a.Timing().Easing, "sampled frames run on linear host timing")
	assert.Len(t, a.Frames(), 21)
	assert.Equal(t, "translate(0px, 0px) scale(0.5, 0.5)", a.Frames()[0].Transform)

	anims := sc.Animations()
	require.Len(t, anims, 2)
	child := anims[1]
	assert.Same(t, sc.Node("a-label"), child.Node())
	assert.Equal(t, "scale(2, 2)", child.Frames()[0].Transform)
	assert.Equal(t, "scale(1, 1)", child.Frames()[20].Transform)
	assert.Equal(t, host.Running, child.PlayState())

	s.PauseAll()
	assert.Equal(t, host.Paused, a.PlayState())
	assert.Equal(t, host.Paused, child.PlayState())
	s.ResumeAll()
	assert.Equal(t, host.Running, child.PlayState())

	c.Pause()
	assert.Equal(t, host.Paused, a.PlayState())
	c.Resume()
	assert.Equal(t, host.Running, a.PlayState())
}

func TestTransformOriginCenter(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{TransformOrigin: "center", Easing: "linear"})
	require.NoError(t, err)
	s.Commit()

	s.Capture()
	sc.Move("a", geometry.Rect{X: 100, Width: 100, Height: 100})
	s.Commit()

	require.NotNil(t, c.Handle())
	r := sc.Node("a").Rect()
	assert.InDelta(t, 100, r.X, 1e-6)
	assert.InDelta(t, 0, r.Y, 1e-6)
	assert.InDelta(t, 50, r.Width, 1e-6)
}

func TestControllerCloseForgets(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{})
	require.NoError(t, err)
	s.Commit()
	sc.Move("a", geometry.Rect{X: 300, Width: 50, Height: 50})
	s.Commit()
	h := c.Handle()
	require.NotNil(t, h)

	c.Close()
	assert.True(t, h.Settled())
	assert.False(t, s.Positions().IsTracked("a"))
	assert.Equal(t, 0, s.Animations().Len())
	assert.Nil(t, s.Controller("a"))

	_, err = s.Register("a", Options{})
	assert.NoError(t, err)
}

func TestControllerCommitRunsAlone(t *testing.T) {
	sc := row("a", "b")
	s, _ := newSession(t, sc)
	a, err := s.Register("a", Options{})
	require.NoError(t, err)
	b, err := s.Register("b", Options{})
	require.NoError(t, err)
	s.Commit()

	a.Capture()
	b.Capture()
	sc.Swap("a", "b")
	a.Commit()

	assert.NotNil(t, a.Handle())
	assert.Nil(t, b.Handle())
}

func TestTrackAll(t *testing.T) {
	sc := row("a", "b", "c")
	s, _ := newSession(t, sc)
	_, err := s.Register("b", Options{})
	require.NoError(t, err)

	added, err := s.TrackAll(Options{})
	require.NoError(t, err)
	var ids []string
	for _, c := range added {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	added, err = s.TrackAll(Options{})
	require.NoError(t, err)
	assert.Empty(t, added)

	_, err = s.TrackAll(Options{Easing: "nope"})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestSessionDefaultsAndIDs(t *testing.T) {
	sc := row("a")
	s, _ := newSession(t, sc,
		WithDefaults(Options{Duration: time.Second, Easing: "linear", TransformOrigin: "top left"}),
		WithKeyframeStep(0.1),
	)
	assert.Equal(t, "row", s.RootID())
	assert.NotEmpty(t, s.ID())
	assert.NotEqual(t, s.ID(), NewSession("row", sc).ID())
	assert.Equal(t, 10, s.Keyframes().Steps())

	c, err := s.Register("a", Options{})
	require.NoError(t, err)
	s.Commit()
	sc.Move("a", geometry.Rect{X: 300, Width: 50, Height: 50})
	s.Commit()
	assert.Equal(t, time.Second, animOf(t, c).Timing().Duration)
	assert.Equal(t, "linear", animOf(t, c).Timing().Easing)
}

func TestObserverSeesLifecycle(t *testing.T) {
	sc := row("a")
	var events []Event
	s, _ := newSession(t, sc, WithObserver(func(ev Event) { events = append(events, ev) }))
	c, err := s.Register("a", Options{Easing: "linear"})
	require.NoError(t, err)
	s.Commit()
	assert.Empty(t, events)

	sc.Move("a", geometry.Rect{X: 200, Width: 50, Height: 50})
	s.Commit()
	first := c.Handle().ID()

	sc.Advance(100 * time.Millisecond)
	s.Capture()
	sc.Move("a", geometry.Rect{X: 300, Width: 50, Height: 50})
	s.Commit()
	second := c.Handle().ID()
	sc.Advance(time.Second)

	kinds := make([]EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
		assert.Equal(t, s.ID(), ev.Session)
		assert.Equal(t, "a", ev.FlipID)
		assert.False(t, ev.At.IsZero())
	}
	assert.Equal(t, []EventKind{EventStarted, EventInterrupted, EventCompleted, EventStarted, EventCompleted}, kinds)
	assert.Equal(t, first, events[0].Animation)
	assert.Equal(t, -100.0, events[0].Delta.TranslateX)
	assert.Equal(t, first, events[2].Animation)
	assert.Equal(t, second, events[4].Animation)
}

func TestStaticTransformIsNotAChange(t *testing.T) {
	sc := row("a")
	sc.Node("a").SetTransform(geometry.Translate(-25, 0), geometry.TopLeft)
	s, _ := newSession(t, sc)
	c, err := s.Register("a", Options{})
	require.NoError(t, err)
	s.Commit()

	for range 3 {
		s.Capture()
		s.Commit()
	}
	assert.Equal(t, Tracked, c.State())
	assert.Empty(t, sc.Animations())
	rect, ok := s.Positions().Get("a")
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 100, Width: 50, Height: 50}, rect)

	s.Capture()
	sc.Move("a", geometry.Rect{X: 200, Width: 50, Height: 50})
	s.Commit()
	a := animOf(t, c)
	assert.Equal(t, "translate(-100px, 0px) scale(1, 1)", a.Frames()[0].Transform)
}

func TestCommitFromCompletionIsIgnored(t *testing.T) {
	sc := row("a", "b")
	s, buf := newSession(t, sc)
	var b *Controller
	completions := 0
	a, err := s.Register("a", Options{OnComplete: func() {
		completions++
		s.Commit()
		b.Commit()
	}})
	require.NoError(t, err)
	b, err = s.Register("b", Options{})
	require.NoError(t, err)
	s.Commit()

	sc.Move("a", geometry.Rect{X: 300, Width: 50, Height: 50})
	s.Commit()
	first := a.Handle()
	require.NotNil(t, first)

	sc.Advance(100 * time.Millisecond)
	s.Capture()
	sc.Move("a", geometry.Rect{X: 400, Width: 50, Height: 50})
	s.Commit()

	assert.Equal(t, 1, completions)
	assert.True(t, first.Settled())
	next := a.Handle()
	require.NotNil(t, next)
	assert.True(t, next.Running(), "the outer flush still starts the new animation")
	assert.Equal(t, [3]int{}, s.Scheduler().Pending())
	assert.Equal(t, Tracked, b.State())
	assert.Contains(t, buf.String(), "commit ignored while flushing")
}
