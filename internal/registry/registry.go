// Package registry tracks the in-flight animation of every FlipID in a
// session so an interrupting mutation can find and finish it.
package registry

import "sync"

type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle // flipID -> handle
}

func New() *Registry {
	return &Registry{
		handles: make(map[string]*Handle),
	}
}

func (r *Registry) Get(flipID string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[flipID]
	return h, ok
}

// Set stores h for flipID. A different handle still registered for the
// same id is finished so only one animation ever drives an element.
func (r *Registry) Set(flipID string, h *Handle) {
	r.mu.Lock()
	prev := r.handles[flipID]
	r.handles[flipID] = h
	r.mu.Unlock()

	if prev != nil && prev != h && !prev.Settled() {
		prev.Finish()
	}
}

func (r *Registry) Delete(flipID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, flipID)
}

// DeleteIf removes flipID only while it still maps to h.
func (r *Registry) DeleteIf(flipID string, h *Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handles[flipID] != h {
		return false
	}
	delete(r.handles, flipID)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// GetAll returns a copy of the registry contents.
func (r *Registry) GetAll() map[string]*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Handle, len(r.handles))
	for k, v := range r.handles {
		result[k] = v
	}
	return result
}

// PauseAll pauses every running animation.
func (r *Registry) PauseAll() {
	for _, h := range r.GetAll() {
		h.Pause()
	}
}

// ResumeAll resumes every paused animation.
func (r *Registry) ResumeAll() {
	for _, h := range r.GetAll() {
		h.Resume()
	}
}
