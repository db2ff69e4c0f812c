// Package condition implements the session-local condition cache and its
// bridge to subshell execution (spec §4.6). The cache memoizes the boolean
// result of one condition source for the lifetime of a single completion
// session; singleflight collapses concurrent duplicate evaluations of the
// same source within that session.
package condition

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/shellkit/complete/internal/collab"
)

// Mode distinguishes the synchronous default path from autosuggestion,
// which must never execute user code (spec §4.2, §5, "autosuggest purity").
type Mode int

const (
	Default Mode = iota
	Autosuggest
)

// Cache is a session-local, not-shared-across-sessions condition memo.
type Cache struct {
	exec collab.Executor

	mu      sync.Mutex
	results map[string]bool
	group   singleflight.Group
}

// New returns an empty Cache backed by exec.
func New(exec collab.Executor) *Cache {
	return &Cache{exec: exec, results: make(map[string]bool)}
}

// Test reports whether src holds: empty source is always true; under
// Autosuggest mode it is always false without touching the executor;
// otherwise the result is memoized and subshell failures degrade to false
// rather than raising (spec §7, "subshell failure... treated as false").
func (c *Cache) Test(ctx context.Context, src string, mode Mode) bool {
	if src == "" {
		return true
	}
	if mode == Autosuggest {
		return false
	}

	c.mu.Lock()
	if v, ok := c.results[src]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(src, func() (any, error) {
		ok, err := c.exec.RunCondition(ctx, src)
		if err != nil {
			ok = false
		}
		c.mu.Lock()
		c.results[src] = ok
		c.mu.Unlock()
		return ok, nil
	})
	return v.(bool)
}

// InvalidateAll clears every memoized result, per Open Question (c): a
// conservative host can call this whenever it observes an environment
// mutation mid-session.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.results = make(map[string]bool)
	c.mu.Unlock()
}
