// Package cache stores the last known geometry and style of every tracked
// element, keyed by FlipID.
package cache

import (
	"slices"
	"sync"

	"github.com/inamate/flip/internal/geometry"
)

// Styles holds the computed styles the engine interpolates.
type Styles struct {
	BgColor string
}

// Entry is the cached state of one FlipID.
type Entry struct {
	Rect   geometry.Rect
	Styles Styles
}

// Positions is the per-session position cache. Iteration follows insertion
// order so bulk reconciliation is deterministic.
type Positions struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewPositions creates an empty cache.
func NewPositions() *Positions {
	return &Positions{entries: make(map[string]Entry)}
}

// IsTracked reports whether id has a cached entry.
func (p *Positions) IsTracked(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[id]
	return ok
}

// Get returns the cached rect of id.
func (p *Positions) Get(id string) (geometry.Rect, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[id]
	return e.Rect, ok
}

// Entry returns the full cached entry of id.
func (p *Positions) Entry(id string) (Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[id]
	return e, ok
}

// Set replaces the cached rect of id, keeping its styles.
func (p *Positions) Set(id string, r geometry.Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok {
		p.order = append(p.order, id)
	}
	e.Rect = r
	p.entries[id] = e
}

// Put replaces the whole entry of id.
func (p *Positions) Put(id string, e Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[id]; !ok {
		p.order = append(p.order, id)
	}
	p.entries[id] = e
}

// SetStyles replaces the cached styles of an already tracked id.
func (p *Positions) SetStyles(id string, s Styles) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok {
		return false
	}
	e.Styles = s
	p.entries[id] = e
	return true
}

// Remove forgets id.
func (p *Positions) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[id]; !ok {
		return
	}
	delete(p.entries, id)
	if i := slices.Index(p.order, id); i >= 0 {
		p.order = slices.Delete(p.order, i, i+1)
	}
}

// Len returns the number of tracked ids.
func (p *Positions) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Range calls fn for every entry in insertion order until fn returns false.
// fn runs on a snapshot and may modify the cache.
func (p *Positions) Range(fn func(id string, e Entry) bool) {
	p.mu.RLock()
	ids := slices.Clone(p.order)
	snapshot := make([]Entry, len(ids))
	for i, id := range ids {
		snapshot[i] = p.entries[id]
	}
	p.mu.RUnlock()

	for i, id := range ids {
		if !fn(id, snapshot[i]) {
			return
		}
	}
}
