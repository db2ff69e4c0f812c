// Package complete is the engine's public API (spec §6): complete,
// complete_add, complete_remove, complete_set_authoritative,
// complete_is_valid_option, complete_print, complete_load, and the
// complete_set_variable_names testing hook, wired on top of the internal
// store/session/autoload/printer packages.
package complete

import (
	"context"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/shellkit/complete/internal/autoload"
	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/collab"
	"github.com/shellkit/complete/internal/condition"
	"github.com/shellkit/complete/internal/printer"
	"github.com/shellkit/complete/internal/session"
	"github.com/shellkit/complete/internal/shellword"
	"github.com/shellkit/complete/internal/store"
)

// Candidate is one completion suggestion.
type Candidate = candidate.Candidate

// OptionEntry describes one declared option, passed to Add (complete_add).
type OptionEntry = store.OptionEntry

// ResultMode is the NO_FILES/NO_COMMON/EXCLUSIVE subset an option declares.
type ResultMode = store.ResultMode

const (
	NoFiles   = store.NoFiles
	NoCommon  = store.NoCommon
	Exclusive = store.Exclusive
)

// Flags carries the per-request knobs §6 groups under "flags".
type Flags struct {
	Descriptions bool
	FuzzyMatch   bool
	Autosuggest  bool
}

// Options bundles the collaborators an Engine needs. AutoloadSource builds
// the autoload collaborator against the Engine's own store once it exists
// (a file-backed source needs to register into that exact store); a nil
// AutoloadSource disables autoloading entirely.
type Options struct {
	Parser         collab.Parser
	EnvStore       collab.EnvStore
	Passwd         collab.PasswordDB
	Registry       collab.Registry
	Resolver       collab.PathResolver
	Expander       collab.Expander
	Executor       collab.Executor
	AutoloadSource func(*store.Store) autoload.Source
}

// Engine is the process-wide completion engine: one store, one autoload
// coordinator, and the collaborators that feed the session driver. A fresh
// condition cache is built per Complete call, matching the "session-local,
// not shared" resource model of spec §5.
type Engine struct {
	parser   collab.Parser
	env      collab.EnvStore
	passwd   collab.PasswordDB
	registry collab.Registry
	resolver collab.PathResolver
	expander collab.Expander
	executor collab.Executor

	store  *store.Store
	loader *autoload.Loader

	variableOverride collab.EnvStore // set by SetVariableNames, nil means use env
}

// New creates an Engine with an empty store.
func New(opts Options) *Engine {
	e := &Engine{
		parser:   opts.Parser,
		env:      opts.EnvStore,
		passwd:   opts.Passwd,
		registry: opts.Registry,
		resolver: opts.Resolver,
		expander: opts.Expander,
		executor: opts.Executor,
		store:    store.New(),
	}
	if opts.AutoloadSource != nil {
		e.loader = autoload.New(opts.AutoloadSource(e.store), e.store)
	}
	return e
}

// Close releases background resources (the autoload TTL eviction loop).
func (e *Engine) Close() {
	if e.loader != nil {
		e.loader.Close()
	}
}

// Store exposes the underlying store for callers that need direct access
// (e.g. the daemon's startup bootstrap).
func (e *Engine) Store() *store.Store { return e.store }

// Complete implements complete(command_line, flags).
func (e *Engine) Complete(ctx context.Context, line string, cursor int, flags Flags) []Candidate {
	env := e.env
	if e.variableOverride != nil {
		env = e.variableOverride
	}

	cfg := session.Config{
		Parser:   e.parser,
		EnvStore: env,
		Passwd:   e.passwd,
		Registry: e.registry,
		Resolver: e.resolver,
		Expander: e.expander,
		Executor: e.executor,
		Store:    e.store,
		Cache:    condition.New(e.executor),
		Loader:   e.loader,
	}
	req := session.Request{
		Line:         line,
		Cursor:       cursor,
		Descriptions: flags.Descriptions,
		Fuzzy:        flags.FuzzyMatch,
		Autosuggest:  flags.Autosuggest,
	}
	out := session.Complete(ctx, cfg, req)
	return lo.UniqBy(out, func(c Candidate) string { return c.Text })
}

// Add implements complete_add.
func (e *Engine) Add(cmd string, cmdIsPath bool, opt OptionEntry) {
	e.store.Add(cmd, cmdIsPath, opt)
}

// Remove implements complete_remove.
func (e *Engine) Remove(cmd string, cmdIsPath bool, shortOpt byte, longOpt string) {
	e.store.Remove(cmd, cmdIsPath, shortOpt, longOpt)
}

// SetAuthoritative implements complete_set_authoritative.
func (e *Engine) SetAuthoritative(cmd string, cmdIsPath, authoritative bool) {
	e.store.SetAuthoritative(cmd, cmdIsPath, authoritative)
}

// IsValidOption implements complete_is_valid_option: it locates the command
// word at the end of cmdLine, optionally autoloads its definitions, and
// validates opt against every matching schema (spec §4.3, §7).
// strictAuthoritative requests the Open Question (a) knob that turns a
// non-authoritative "can't say" into a hard false.
func (e *Engine) IsValidOption(ctx context.Context, cmdLine, opt string, strictAuthoritative, allowAutoload bool) (ok bool, errs []string) {
	stmt, found := e.parser.PlainStatementAt(cmdLine, len(cmdLine))
	if !found {
		return false, []string{"no command found in: " + cmdLine}
	}
	cmdWord := shellword.Unescape(cmdLine[stmt.CommandWord.Begin:stmt.CommandWord.End])
	cmdIsPath := strings.ContainsRune(cmdWord, '/')
	cmdPath := ""
	if !cmdIsPath && e.resolver != nil {
		cmdPath = e.resolver.Resolve(cmdWord)
	}
	if allowAutoload && e.loader != nil {
		e.loader.Load(ctx, cmdWord, cmdIsPath, false, autoload.Default)
	}

	schemas := e.store.FindMatching(cmdWord, cmdPath)
	valid, err := store.ValidateOption(schemas, opt, strictAuthoritative)
	if err != nil {
		return valid, []string{err.Error()}
	}
	return valid, nil
}

// Print implements complete_print.
func (e *Engine) Print(w io.Writer) error {
	return printer.Print(w, e.store.ByOrder())
}

// Load implements complete_load: an explicit, host-triggered (re)load of
// one command's definitions, bypassing the driver's own on-demand call.
func (e *Engine) Load(ctx context.Context, name string, reload bool) {
	if e.loader == nil {
		return
	}
	e.loader.Load(ctx, name, strings.ContainsRune(name, '/'), reload, autoload.Default)
}

// SetVariableNames implements the complete_set_variable_names testing
// hook: a non-nil names overrides the environment consulted by variable
// completion; nil restores the real EnvStore.
func (e *Engine) SetVariableNames(names []string) {
	if names == nil {
		e.variableOverride = nil
		return
	}
	e.variableOverride = staticEnvStore{names: names}
}

type staticEnvStore struct{ names []string }

func (s staticEnvStore) Get(string) (string, bool) { return "", false }
func (s staticEnvStore) Names() []string           { return s.names }
