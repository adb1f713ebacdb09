package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/flip/internal/flip"
	"github.com/inamate/flip/internal/scene"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Duration)
	assert.Equal(t, time.Duration(0), cfg.Delay)
	assert.Equal(t, "ease", cfg.Easing)
	assert.Equal(t, "top left", cfg.TransformOrigin)
	assert.Equal(t, 0.05, cfg.KeyframeStep)
	assert.Empty(t, cfg.InspectAddr)
	assert.Equal(t, []string{"localhost:5173", "localhost:3000"}, cfg.InspectOrigins)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	assert.Equal(t, flip.DefaultOptions(), cfg.Options())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FLIP_DURATION", "1s")
	t.Setenv("FLIP_STAGGER", "25ms")
	t.Setenv("FLIP_EASING", "easeOutBack")
	t.Setenv("FLIP_KEYFRAME_STEP", "0.1")
	t.Setenv("FLIP_LOG_LEVEL", "debug")
	t.Setenv("FLIP_INSPECT_ADDR", ":8090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Duration)
	assert.Equal(t, 25*time.Millisecond, cfg.Stagger)
	assert.Equal(t, "easeOutBack", cfg.Options().Easing)
	assert.Equal(t, ":8090", cfg.InspectAddr)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	s := flip.NewSession("root", scene.New(), cfg.SessionOptions(slog.Default())...)
	assert.Equal(t, 10, s.Keyframes().Steps())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FLIP_DURATION", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("FLIP_LOG_LEVEL", "chatty")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLIP_LOG_LEVEL")
}
