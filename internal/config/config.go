package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/flip/internal/flip"
)

type Config struct {
	Duration        time.Duration `envconfig:"FLIP_DURATION" default:"500ms"`
	Delay           time.Duration `envconfig:"FLIP_DELAY" default:"0s"`
	Easing          string        `envconfig:"FLIP_EASING" default:"ease"`
	Stagger         time.Duration `envconfig:"FLIP_STAGGER" default:"0s"`
	TransformOrigin string        `envconfig:"FLIP_TRANSFORM_ORIGIN" default:"top left"`
	KeyframeStep    float64       `envconfig:"FLIP_KEYFRAME_STEP" default:"0.05"`
	LogLevel        string        `envconfig:"FLIP_LOG_LEVEL" default:"info"`

	// Inspector server of cmd/flipsim; empty InspectAddr disables it.
	InspectAddr    string   `envconfig:"FLIP_INSPECT_ADDR" default:""`
	InspectOrigins []string `envconfig:"FLIP_INSPECT_ORIGINS" default:"localhost:5173,localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Options returns the session-wide controller defaults.
func (c *Config) Options() flip.Options {
	return flip.Options{
		Duration:        c.Duration,
		Delay:           c.Delay,
		Easing:          c.Easing,
		Stagger:         c.Stagger,
		TransformOrigin: c.TransformOrigin,
	}
}

// Level maps FLIP_LOG_LEVEL to a slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse FLIP_LOG_LEVEL: %w", err)
	}
	return l, nil
}

// SessionOptions returns the options NewSession needs to honor the config,
// logging through logger.
func (c *Config) SessionOptions(logger *slog.Logger) []flip.SessionOption {
	return []flip.SessionOption{
		flip.WithLogger(logger),
		flip.WithDefaults(c.Options()),
		flip.WithKeyframeStep(c.KeyframeStep),
	}
}
