// Package flip animates layout changes with the First-Last-Invert-Play
// technique. A Session is owned by one logical root and shares a position
// cache, an animation registry, a layout scheduler and a keyframe generator
// between every controller registered under that root.
//
// A render cycle has two halves. Capture runs before the host mutates its
// tree and records the "first" geometry (and the mid-flight geometry of any
// element still animating). Commit runs after the mutation: it finishes
// interrupted animations, measures the "last" geometry, and starts the
// inverse-to-identity animations, all batched through the scheduler.
package flip

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inamate/flip/internal/cache"
	"github.com/inamate/flip/internal/host"
	"github.com/inamate/flip/internal/keyframes"
	"github.com/inamate/flip/internal/registry"
	"github.com/inamate/flip/internal/schedule"
)

// participant is anything that takes part in a session cycle.
type participant interface {
	capture()
	schedule()
}

// Session is the shared FLIP context of one logical root.
type Session struct {
	id     string
	rootID string
	tree   host.Tree

	positions  *cache.Positions
	animations *registry.Registry
	scheduler  *schedule.Scheduler
	keyframes  *keyframes.Generator
	logger     *slog.Logger
	defaults   Options
	step       float64
	observers  []Observer

	mu           sync.Mutex
	participants []participant
	owners       map[string]*Controller // flipID -> controller
	wrapped      map[string]*Wrapped    // element kind -> wrapper
	slot         int                    // stagger slot within the current flush
	flushing     bool
}

// SessionOption customizes NewSession.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithDefaults sets the options controllers fall back to.
func WithDefaults(o Options) SessionOption {
	return func(s *Session) { s.defaults = o }
}

// WithKeyframeStep sets the keyframe sampling resolution.
func WithKeyframeStep(step float64) SessionOption {
	return func(s *Session) { s.step = step }
}

// NewSession creates the FLIP context for rootID.
func NewSession(rootID string, tree host.Tree, opts ...SessionOption) *Session {
	s := &Session{
		id:         uuid.New().String(),
		rootID:     rootID,
		tree:       tree,
		positions:  cache.NewPositions(),
		animations: registry.New(),
		logger:     slog.Default(),
		defaults:   DefaultOptions(),
		step:       keyframes.DefaultStep,
		owners:     make(map[string]*Controller),
		wrapped:    make(map[string]*Wrapped),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("session", s.id, "root", rootID)
	s.scheduler = schedule.New(s.logger)
	s.keyframes = keyframes.NewGenerator(s.step)
	return s
}

func (s *Session) ID() string                      { return s.id }
func (s *Session) RootID() string                  { return s.rootID }
func (s *Session) Tree() host.Tree                 { return s.tree }
func (s *Session) Positions() *cache.Positions     { return s.positions }
func (s *Session) Animations() *registry.Registry  { return s.animations }
func (s *Session) Scheduler() *schedule.Scheduler  { return s.scheduler }
func (s *Session) Keyframes() *keyframes.Generator { return s.keyframes }
func (s *Session) Logger() *slog.Logger            { return s.logger }

// Register starts tracking one element by FlipID.
func (s *Session) Register(flipID string, o Options) (*Controller, error) {
	if flipID == "" {
		return nil, fmt.Errorf("%w: empty flip id", ErrInvalidOption)
	}
	cfg, err := o.resolve(s.defaults)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[flipID]; ok {
		return nil, fmt.Errorf("%w: flip id %q is already registered", ErrInvalidOption, flipID)
	}

	c := &Controller{s: s}
	c.t = newTracker(s, flipID, cfg)
	c.t.delay = s.staggerDelay(cfg)
	if cfg.onComplete != nil {
		c.t.started = func(h *registry.Handle) { h.OnComplete(cfg.onComplete) }
	}
	s.owners[flipID] = c
	s.participants = append(s.participants, c)
	return c, nil
}

// TrackAll registers every element the host reports under the root that
// is not registered yet, and returns the new controllers.
func (s *Session) TrackAll(o Options) ([]*Controller, error) {
	if _, err := o.resolve(s.defaults); err != nil {
		return nil, err
	}

	var added []*Controller
	for _, el := range s.tree.Query(s.rootID) {
		id := el.FlipID()
		if id == "" || s.Controller(id) != nil {
			continue
		}
		c, err := s.Register(id, o)
		if err != nil {
			return added, err
		}
		added = append(added, c)
	}
	return added, nil
}

// Controller returns the controller registered for flipID, or nil.
func (s *Session) Controller(flipID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[flipID]
}

// Capture records "first" geometry for every participant. Call it right
// before the host mutates the tree.
func (s *Session) Capture() {
	for _, p := range s.snapshot() {
		p.capture()
	}
}

// Commit runs the FLIP cycle for every participant. Call it right after
// the host mutated the tree.
//
// OnComplete callbacks run inside a flush when an interruption finishes
// their animation. A Commit (or Flush) made from there is ignored: the
// running flush has not measured yet and picks up the mutation itself.
func (s *Session) Commit() {
	s.commit(s.snapshot()...)
}

// Flush drains the scheduler.
func (s *Session) Flush() {
	s.commit()
}

// commit schedules ps and drains the scheduler, unless a flush is already
// running.
func (s *Session) commit(ps ...participant) {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		s.logger.Debug("commit ignored while flushing")
		return
	}
	s.flushing = true
	s.slot = 0
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()
	for _, p := range ps {
		p.schedule()
	}
	s.scheduler.Flush()
}

// PauseAll pauses every running animation of the session.
func (s *Session) PauseAll() { s.animations.PauseAll() }

// ResumeAll resumes every paused animation of the session.
func (s *Session) ResumeAll() { s.animations.ResumeAll() }

func (s *Session) add(p participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = append(s.participants, p)
}

func (s *Session) remove(p participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.participants {
		if q == p {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			break
		}
	}
	if c, ok := p.(*Controller); ok && s.owners[c.ID()] == c {
		delete(s.owners, c.ID())
	}
}

func (s *Session) snapshot() []participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// staggerDelay hands out session-wide stagger slots to staggered
// controllers that start an animation in the current flush.
func (s *Session) staggerDelay(cfg settings) func() time.Duration {
	return func() time.Duration {
		if cfg.stagger == 0 {
			return cfg.delay
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		d := cfg.delay + cfg.stagger*time.Duration(s.slot)
		s.slot++
		return d
	}
}
