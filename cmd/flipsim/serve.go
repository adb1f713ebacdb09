package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/inamate/flip/internal/config"
	"github.com/inamate/flip/internal/flip"
	"github.com/inamate/flip/internal/inspect"
)

// pause between the end of one swap and the start of the next
const settle = 500 * time.Millisecond

// serve swaps the last two elements forever on a real clock and streams
// every cycle through the inspector.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	sc, rootID, err := loadScene(args)
	if err != nil {
		return err
	}

	commands := make(chan string, 8)
	hub := inspect.NewHub(func(sessionID, command string) error {
		select {
		case commands <- command:
			return nil
		default:
			return errors.New("simulation busy")
		}
	})
	go hub.Run(ctx)

	opts := append(cfg.SessionOptions(logger), flip.WithObserver(hub.Publish))
	s := flip.NewSession(rootID, sc, opts...)
	hub.Track(s)

	ctrls, err := s.TrackAll(flip.Options{})
	if err != nil {
		return fmt.Errorf("track elements: %w", err)
	}
	if len(ctrls) < 2 {
		return fmt.Errorf("scene root %q needs at least two elements, has %d", rootID, len(ctrls))
	}
	s.Commit()

	srv := &http.Server{
		Addr:         cfg.InspectAddr,
		Handler:      inspect.NewHandler(hub, cfg.InspectOrigins...).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("inspector starting", "addr", cfg.InspectAddr, "session", s.ID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	a, b := ctrls[len(ctrls)-2].ID(), ctrls[len(ctrls)-1].ID()
	cycle := cfg.Duration + cfg.Delay + cfg.Stagger*time.Duration(len(ctrls)) + settle
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	var (
		paused  bool
		elapsed = cycle
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down inspector")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)

		case err := <-errc:
			return fmt.Errorf("inspector: %w", err)

		case cmd := <-commands:
			switch cmd {
			case inspect.TypeControlPause:
				paused = true
				s.PauseAll()
			case inspect.TypeControlResume:
				paused = false
				s.ResumeAll()
			}

		case <-ticker.C:
			if paused {
				continue
			}
			if elapsed >= cycle {
				s.Capture()
				sc.Swap(a, b)
				s.Commit()
				elapsed = 0
			}
			sc.Advance(frame)
			elapsed += frame
		}
	}
}
