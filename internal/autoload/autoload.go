// Package autoload implements on-demand completion-definition loading
// (spec §4.7): the first time a command is completed, its definitions are
// sourced on demand and registered into the store (whether or not the store
// already holds a schema for it), rather than requiring every command's
// completions to be declared up front.
package autoload

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/shellkit/complete/internal/store"
)

// Source is the out-of-scope collaborator that discovers and registers
// completion definitions for a command — typically by sourcing a shell
// completion file, which itself calls back into the store via complete_add.
// version identifies the source's current content (e.g. an mtime or hash)
// so a later reload can tell whether anything actually changed.
type Source interface {
	Load(ctx context.Context, cmd string) (version string, found bool, err error)
}

// Mode distinguishes the synchronous default path from autosuggestion,
// which must never block the session waiting on a loader (spec §4.2, §5).
type Mode int

const (
	Default Mode = iota
	Autosuggest
)

// attemptedTTL bounds how long the outcome of a load attempt (found or not)
// is remembered before the next completion for that command tries again.
const attemptedTTL = time.Hour

// attempt records the outcome of the last load attempt for one command.
type attempt struct {
	version string
	found   bool
}

// Loader tracks, per command, the outcome of its last load attempt so that
// a plain Load is a no-op after the first attempt (within attemptedTTL),
// and a reload only touches the store when the source has actually
// changed.
type Loader struct {
	source Source
	st     *store.Store

	attempts *ttlcache.Cache[string, attempt]

	mu      sync.Mutex
	pending map[string]bool
}

// New returns a Loader that sources definitions via source and registers
// them into st.
func New(source Source, st *store.Store) *Loader {
	attempts := ttlcache.New[string, attempt](
		ttlcache.WithTTL[string, attempt](attemptedTTL),
	)
	go attempts.Start()
	return &Loader{source: source, st: st, attempts: attempts, pending: make(map[string]bool)}
}

// Close stops the internal TTL eviction loop.
func (l *Loader) Close() {
	l.attempts.Stop()
}

// Load attempts to load cmd's completion definitions. Under Default mode it
// runs synchronously and returns once the attempt (or no-op) completes.
// Under Autosuggest mode it never blocks: an unattempted command is
// enqueued for a background attempt and Load returns immediately with
// nothing loaded yet for this call.
func (l *Loader) Load(ctx context.Context, cmd string, cmdIsPath, reload bool, mode Mode) {
	if mode == Autosuggest {
		l.mu.Lock()
		already := l.pending[cmd]
		l.pending[cmd] = true
		l.mu.Unlock()
		if !already {
			go func() {
				l.attempt(context.Background(), cmd, cmdIsPath, false)
				l.mu.Lock()
				delete(l.pending, cmd)
				l.mu.Unlock()
			}()
		}
		return
	}
	l.attempt(ctx, cmd, cmdIsPath, reload)
}

func (l *Loader) attempt(ctx context.Context, cmd string, cmdIsPath, reload bool) {
	item := l.attempts.Get(cmd)
	prev, attemptedBefore := attempt{}, item != nil
	if attemptedBefore {
		prev = item.Value()
		if !reload {
			return
		}
	}

	version, found, err := l.source.Load(ctx, cmd)
	if err != nil {
		return
	}

	if attemptedBefore && prev.found && (!found || prev.version != version) {
		l.st.Remove(cmd, cmdIsPath, 0, "")
	}

	l.attempts.Set(cmd, attempt{version: version, found: found}, ttlcache.DefaultTTL)
}
