// Command flipsim runs a FLIP cycle against the headless scene and prints
// where every element is on each frame, as JSON lines. The scene is read
// from the file named by the first argument, or a five-item list is used.
// The last two FlipIDs of the root are swapped.
//
// With FLIP_INSPECT_ADDR set it instead keeps swapping in real time and
// serves the inspector there, so the cycles can be watched over a websocket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inamate/flip/internal/config"
	"github.com/inamate/flip/internal/flip"
	"github.com/inamate/flip/internal/geometry"
	"github.com/inamate/flip/internal/scene"
)

const frame = 16 * time.Millisecond

type sample struct {
	At    string                   `json:"at"`
	Rects map[string]geometry.Rect `json:"rects"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.InspectAddr != "" {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := serve(ctx, cfg, logger, os.Args[1:]); err != nil {
			slog.Error("serve", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger, os.Args[1:]); err != nil {
		slog.Error("simulate", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, args []string) error {
	sc, rootID, err := loadScene(args)
	if err != nil {
		return err
	}

	s := flip.NewSession(rootID, sc, cfg.SessionOptions(logger)...)
	ctrls, err := s.TrackAll(flip.Options{})
	if err != nil {
		return fmt.Errorf("track elements: %w", err)
	}
	if len(ctrls) < 2 {
		return fmt.Errorf("scene root %q needs at least two elements, has %d", rootID, len(ctrls))
	}
	s.Commit()

	a, b := ctrls[len(ctrls)-2].ID(), ctrls[len(ctrls)-1].ID()
	s.Capture()
	sc.Swap(a, b)
	s.Commit()
	logger.Info("swapped", "a", a, "b", b, "animations", s.Animations().Len())

	enc := json.NewEncoder(os.Stdout)
	total := cfg.Duration + cfg.Delay + cfg.Stagger*time.Duration(len(ctrls))
	for at := time.Duration(0); at <= total; at += frame {
		out := sample{At: at.String(), Rects: make(map[string]geometry.Rect, len(ctrls))}
		for _, c := range ctrls {
			if n := sc.Node(c.ID()); n != nil {
				out.Rects[c.ID()] = n.Rect()
			}
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		sc.Advance(frame)
	}

	hits, misses := s.Keyframes().Stats()
	logger.Info("done", "keyframe_hits", hits, "keyframe_misses", misses)
	return nil
}

func loadScene(args []string) (*scene.Scene, string, error) {
	if len(args) == 0 {
		sc := scene.New()
		sc.Build(sc.Root(), scene.List("list", 40, "one", "two", "three", "four", "five"))
		return sc, "list", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read scene: %w", err)
	}
	sc, err := scene.Load(data)
	if err != nil {
		return nil, "", err
	}
	var spec scene.NodeSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, "", fmt.Errorf("decode scene: %w", err)
	}
	if spec.RootID == "" {
		return nil, "", fmt.Errorf("scene %s: top-level node needs a rootId", args[0])
	}
	return sc, spec.RootID, nil
}
