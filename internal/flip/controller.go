package flip

import "github.com/inamate/flip/internal/registry"

// Controller animates a single element identified by a FlipID.
type Controller struct {
	s *Session
	t *tracker
}

func (c *Controller) ID() string               { return c.t.ID() }
func (c *Controller) State() State             { return c.t.State() }
func (c *Controller) Handle() *registry.Handle { return c.t.Handle() }
func (c *Controller) capture()                 { c.t.capture() }
func (c *Controller) schedule()                { c.t.schedule() }

// Pause pauses the running animation, if any.
func (c *Controller) Pause() { c.t.pause() }

// Resume resumes a paused animation, if any.
func (c *Controller) Resume() { c.t.resume() }

// Capture records the element's geometry ahead of a mutation.
func (c *Controller) Capture() { c.t.capture() }

// Commit runs the cycle for this element alone and flushes the session
// scheduler.
func (c *Controller) Commit() { c.s.commit(c) }

// Close stops tracking the element.
func (c *Controller) Close() {
	c.t.forget()
	c.s.remove(c)
}
