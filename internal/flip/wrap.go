package flip

import (
	"fmt"

	"github.com/inamate/flip/internal/host"
)

// Builder creates a host element of one kind carrying flipID.
type Builder func(flipID string) (host.Element, error)

// Wrapped builds elements of one kind that are tracked as soon as they
// exist.
type Wrapped struct {
	s     *Session
	kind  string
	build Builder
	opts  Options
}

// Wrap returns the wrapper for kind. Wrappers are cached per kind; a later
// call for the same kind returns the first wrapper unchanged.
func (s *Session) Wrap(kind string, build Builder, o Options) (*Wrapped, error) {
	if kind == "" || build == nil {
		return nil, fmt.Errorf("%w: wrap needs an element kind and a builder", ErrInvalidOption)
	}
	if _, err := o.resolve(s.defaults); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wrapped[kind]; ok {
		return w, nil
	}
	w := &Wrapped{s: s, kind: kind, build: build, opts: o}
	s.wrapped[kind] = w
	return w, nil
}

func (w *Wrapped) Kind() string { return w.kind }

// New builds an element and registers it. An identity that is already
// registered keeps its controller.
func (w *Wrapped) New(flipID string) (host.Element, *Controller, error) {
	el, err := w.build(flipID)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s %q: %w", w.kind, flipID, err)
	}
	if c := w.s.Controller(flipID); c != nil {
		return el, c, nil
	}
	c, err := w.s.Register(flipID, w.opts)
	if err != nil {
		return nil, nil, err
	}
	return el, c, nil
}
