// Package resolver implements an ordered chain of candidates that are tried
// against an input until one of them accepts it.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Func resolves an input. Returning handled=false declines the input so the
// next candidate in the chain can try it.
type Func[In, Out any] func(ctx context.Context, in In) (out Out, handled bool, err error)

// Candidate is a named resolver with a priority. Higher priorities are tried first.
type Candidate[In, Out any] struct {
	Name     string
	Priority int
	Resolve  Func[In, Out]
}

// Match describes the candidate that accepted an input.
type Match[Out any] struct {
	Value    Out
	Name     string
	Priority int
}

type entry[In, Out any] struct {
	candidate Candidate[In, Out]
	seq       int
}

// Chain holds candidates ordered by priority. Among equal priorities the most
// recently registered candidate is tried first.
type Chain[In, Out any] struct {
	mu      sync.RWMutex
	entries []entry[In, Out]
	seq     int
}

// New creates an empty chain.
func New[In, Out any]() *Chain[In, Out] {
	return &Chain[In, Out]{}
}

// Register adds a candidate. Registering a name that is already present is a
// no-op and reports false.
func (c *Chain[In, Out]) Register(candidate Candidate[In, Out]) bool {
	if candidate.Resolve == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.candidate.Name == candidate.Name {
			return false
		}
	}

	c.seq++
	c.entries = append(c.entries, entry[In, Out]{candidate: candidate, seq: c.seq})
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].candidate.Priority != c.entries[j].candidate.Priority {
			return c.entries[i].candidate.Priority > c.entries[j].candidate.Priority
		}
		return c.entries[i].seq > c.entries[j].seq
	})

	return true
}

// Has reports whether a candidate with the given name is registered.
func (c *Chain[In, Out]) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.entries {
		if e.candidate.Name == name {
			return true
		}
	}
	return false
}

// Names lists candidate names in the order they are tried.
func (c *Chain[In, Out]) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.candidate.Name)
	}
	return names
}

// Len returns the number of registered candidates.
func (c *Chain[In, Out]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Resolve tries each candidate in order and returns the first accepted result.
// ok is false when every candidate declined.
func (c *Chain[In, Out]) Resolve(ctx context.Context, in In) (Match[Out], bool, error) {
	c.mu.RLock()
	candidates := make([]Candidate[In, Out], 0, len(c.entries))
	for _, e := range c.entries {
		candidates = append(candidates, e.candidate)
	}
	c.mu.RUnlock()

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return Match[Out]{}, false, err
		}

		out, handled, err := candidate.Resolve(ctx, in)
		if err != nil {
			return Match[Out]{}, false, fmt.Errorf("resolver %q failed: %w", candidate.Name, err)
		}
		if handled {
			return Match[Out]{
				Value:    out,
				Name:     candidate.Name,
				Priority: candidate.Priority,
			}, true, nil
		}
	}

	return Match[Out]{}, false, nil
}
