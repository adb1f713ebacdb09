package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/flip/internal/flip"
	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/scene"
)

func setup(t *testing.T) (*scene.Scene, *flip.Session) {
	t.Helper()
	sc := scene.New()
	sc.Build(sc.Root(), scene.List("list", 50, "modal"))
	return sc, flip.NewSession("list", sc)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("visible")
	require.NoError(t, err)
	assert.Equal(t, Visible, v)

	_, err = ParseVariant("gone")
	assert.ErrorIs(t, err, ErrInvalidVariant)

	_, err = New(nil, "modal", "shown", Options{})
	assert.ErrorIs(t, err, ErrInvalidVariant)
}

func TestExitKeepsElementRenderedUntilFinished(t *testing.T) {
	sc, s := setup(t)
	d, err := New(s, "modal", "visible", Options{Duration: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, d.IsRendered())

	d.Apply()
	assert.Empty(t, sc.Animations(), "first render is not animated by default")

	d.Toggle()
	assert.Equal(t, Hidden, d.Variant())
	assert.True(t, d.IsRendered())

	d.Apply()
	h, ok := s.Animations().Get("modal")
	require.True(t, ok)
	assert.True(t, h.Running())

	sc.Advance(50 * time.Millisecond)
	assert.True(t, d.IsRendered())
	assert.InDelta(t, 0.5, sc.Node("modal").Opacity(), 1e-6)

	sc.Advance(50 * time.Millisecond)
	assert.False(t, d.IsRendered())
	assert.Equal(t, 1, sc.Renders())
	assert.Equal(t, 0, s.Animations().Len())
	assert.Equal(t, 0.0, sc.Node("modal").Opacity())
}

func TestToggleBackCancelsExit(t *testing.T) {
	sc, s := setup(t)
	d, err := New(s, "modal", "visible", Options{})
	require.NoError(t, err)
	d.Apply()

	d.Toggle()
	d.Apply()
	exit, ok := s.Animations().Get("modal")
	require.True(t, ok)

	d.Toggle()
	assert.Equal(t, Visible, d.Variant())
	d.Apply()

	assert.True(t, exit.Settled())
	assert.Equal(t, 0, s.Animations().Len())
	assert.True(t, d.IsRendered())
	assert.Equal(t, 0, sc.Renders())

	sc.Advance(time.Second)
	assert.True(t, d.IsRendered())
	assert.Equal(t, 1.0, sc.Node("modal").Opacity())
}

func TestEnterFromHidden(t *testing.T) {
	sc, s := setup(t)
	d, err := New(s, "modal", "hidden", Options{AnimateFirstRender: true})
	require.NoError(t, err)
	assert.False(t, d.IsRendered())

	d.Apply()
	assert.Empty(t, sc.Animations(), "a hidden first render has nothing to show")

	d.Toggle()
	assert.True(t, d.IsRendered())
	d.Apply()
	anims := sc.Animations()
	require.Len(t, anims, 1)
	assert.Equal(t, "0", anims[0].Frames()[0].Opacity)
	assert.Equal(t, 0, s.Animations().Len(), "enter animations are not registered")
}

func TestAnimateFirstRender(t *testing.T) {
	sc, s := setup(t)
	d, err := New(s, "modal", "visible", Options{AnimateFirstRender: true})
	require.NoError(t, err)
	d.Apply()
	assert.Len(t, sc.Animations(), 1)
}

func TestSetRendered(t *testing.T) {
	_, s := setup(t)
	d, err := New(s, "modal", "visible", Options{})
	require.NoError(t, err)

	require.NoError(t, d.SetRendered("hidden"))
	assert.False(t, d.IsRendered())

	err = d.SetRendered("maybe")
	assert.ErrorIs(t, err, ErrInvalidVariant)
	assert.False(t, d.IsRendered())
}

func TestApplySkipsMissingTarget(t *testing.T) {
	sc, s := setup(t)
	d, err := New(s, "ghost", "visible", Options{})
	require.NoError(t, err)
	assert.NotPanics(t, d.Apply)
	assert.Empty(t, sc.Animations())
}

func TestExitSupersedesMove(t *testing.T) {
	sc, s := setup(t)
	c, err := s.Register("modal", flip.Options{})
	require.NoError(t, err)
	s.Commit()

	sc.Move("modal", geometry.Rect{X: 100, Width: 300, Height: 50})
	s.Commit()
	move := c.Handle()
	require.NotNil(t, move)
	require.True(t, move.Running())

	d, err := New(s, "modal", "visible", Options{Duration: 100 * time.Millisecond})
	require.NoError(t, err)
	d.Apply()
	d.Toggle()
	d.Apply()

	assert.True(t, move.Settled())
	assert.Equal(t, flip.Tracked, c.State())
	exit, ok := s.Animations().Get("modal")
	require.True(t, ok)
	assert.NotEqual(t, move.ID(), exit.ID())
	assert.Equal(t, 100.0, sc.Node("modal").Rect().X)

	sc.Advance(100 * time.Millisecond)
	assert.False(t, d.IsRendered())
	assert.Equal(t, 0, s.Animations().Len())
}
