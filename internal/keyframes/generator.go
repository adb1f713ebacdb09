package keyframes

import (
	"fmt"
	"math"
	"sync"

	"github.com/inamate/flip/internal/geometry"
)

// maxCached bounds the memo; it is cleared wholesale when full.
const maxCached = 512

// Generator builds and memoizes keyframe sequences. Deltas are rounded
// before use, so repeated interactions (toggling between the same two
// layouts) hit the cache and get identical frames. Returned sequences are
// shared and must not be modified.
type Generator struct {
	mu     sync.Mutex
	steps  int
	cache  map[string]Sequence
	hits   int
	misses int
}

// NewGenerator creates a generator sampling every step (a fraction of the
// whole animation). Non-positive or oversized steps fall back to DefaultStep.
func NewGenerator(step float64) *Generator {
	if step <= 0 || step > 1 {
		step = DefaultStep
	}
	return &Generator{
		steps: max(1, int(math.Round(1/step))),
		cache: make(map[string]Sequence),
	}
}

// Steps returns the default number of intervals per sequence.
func (g *Generator) Steps() int {
	return g.steps
}

// Generate returns the sequence for p, from the cache when possible.
func (g *Generator) Generate(p Params) Sequence {
	steps := p.Steps
	if steps <= 0 {
		steps = g.steps
	}
	p.Delta = roundDelta(p.Delta)

	// Anonymous easing functions cannot be told apart by key.
	if p.Easing.Fn != nil && p.Easing.Name == "" {
		return build(p, steps)
	}
	key := cacheKey(p, steps)

	g.mu.Lock()
	if seq, ok := g.cache[key]; ok {
		g.hits++
		g.mu.Unlock()
		return seq
	}
	g.misses++
	g.mu.Unlock()

	seq := build(p, steps)

	g.mu.Lock()
	if len(g.cache) >= maxCached {
		clear(g.cache)
	}
	g.cache[key] = seq
	g.mu.Unlock()

	return seq
}

// Stats reports cache hits and misses since creation or the last Reset.
func (g *Generator) Stats() (hits, misses int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hits, g.misses
}

// Len returns the number of memoized sequences.
func (g *Generator) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache)
}

// Reset drops every memoized sequence.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.cache)
	g.hits, g.misses = 0, 0
}

func roundDelta(d geometry.Delta) geometry.Delta {
	return geometry.Delta{
		TranslateX: round(d.TranslateX, 100),
		TranslateY: round(d.TranslateY, 100),
		ScaleX:     round(d.ScaleX, 1e4),
		ScaleY:     round(d.ScaleY, 1e4),
	}
}

func cacheKey(p Params, steps int) string {
	name := p.Easing.Name
	if p.Easing.Fn == nil {
		name = "default"
	}
	return fmt.Sprintf("%s|%.2f|%.2f|%.4f|%.4f|%t|%s|%s|%d",
		name,
		p.Delta.TranslateX, p.Delta.TranslateY, p.Delta.ScaleX, p.Delta.ScaleY,
		p.Inverse, p.FromColor, p.ToColor, steps)
}
