package flip

import (
	"time"

	"github.com/inamate/flip/internal/geometry"
)

// EventKind names a step in the lifecycle of one animation.
type EventKind string

const (
	EventStarted     EventKind = "animation.started"
	EventInterrupted EventKind = "animation.interrupted"
	EventCompleted   EventKind = "animation.completed"
	EventForgotten   EventKind = "animation.forgotten"
)

// Event reports a lifecycle change of the animation driving FlipID.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Session   string         `json:"session"`
	FlipID    string         `json:"flipId"`
	Animation string         `json:"animation,omitempty"`
	Delta     geometry.Delta `json:"delta"`
	Delay     time.Duration  `json:"delay,omitempty"`
	At        time.Time      `json:"at"`
}

// Observer receives session events. It runs synchronously inside the
// cycle that produced the event and must not call back into the session.
type Observer func(Event)

// WithObserver adds an event observer.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

func (s *Session) emit(ev Event) {
	if len(s.observers) == 0 {
		return
	}
	ev.Session = s.id
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	for _, o := range s.observers {
		o(ev)
	}
}
