// Package schedule batches layout reads and writes from many controllers
// into one ordered pass: every pre-write, then every measurement, then every
// render write. Interleaving them would force a synchronous reflow per
// element.
package schedule

import (
	"fmt"
	"log/slog"
	"sync"
)

// Phase is one step of a flush.
type Phase int

const (
	PreWrite Phase = iota
	Measure
	Render
	numPhases
)

func (p Phase) String() string {
	switch p {
	case PreWrite:
		return "pre-write"
	case Measure:
		return "measure"
	case Render:
		return "render"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Scheduler holds the three job queues.
type Scheduler struct {
	mu     sync.Mutex
	jobs   [numPhases][]func()
	logger *slog.Logger
}

// New creates a scheduler. A nil logger means slog.Default().
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// PreWrite queues a style reset that must land before any measurement.
func (s *Scheduler) PreWrite(fn func()) { s.add(PreWrite, fn) }

// Measure queues a layout read.
func (s *Scheduler) Measure(fn func()) { s.add(Measure, fn) }

// Render queues a style write or animation start.
func (s *Scheduler) Render(fn func()) { s.add(Render, fn) }

func (s *Scheduler) add(p Phase, fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[p] = append(s.jobs[p], fn)
}

// Flush runs all queued jobs phase by phase, each phase in registration
// order. Jobs queued for a phase that has already run (or is running) in
// this flush wait for the next one.
func (s *Scheduler) Flush() {
	for p := PreWrite; p < numPhases; p++ {
		s.mu.Lock()
		jobs := s.jobs[p]
		s.jobs[p] = nil
		s.mu.Unlock()

		for _, job := range jobs {
			s.run(p, job)
		}
	}
}

// Pending returns the queue lengths in phase order.
func (s *Scheduler) Pending() [3]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return [3]int{len(s.jobs[PreWrite]), len(s.jobs[Measure]), len(s.jobs[Render])}
}

// run isolates a failing job so the rest of the flush still happens.
func (s *Scheduler) run(p Phase, job func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("layout job panicked", "phase", p.String(), "panic", r)
		}
	}()
	job()
}
