// Package store implements the completion store and per-command schema
// (spec §4.1): a process-wide, glob-keyed set of option declarations guarded
// by a two-level locking discipline so that user-supplied condition and
// arg_spec callbacks can safely trigger nested completion operations.
package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ef-ds/deque"

	"github.com/shellkit/complete/internal/candidate"
)

// ResultMode is the subset of {NO_FILES, NO_COMMON, EXCLUSIVE} an option
// declares (spec §3).
type ResultMode uint8

const (
	NoFiles  ResultMode = 1 << iota
	NoCommon            // the switch consumes the next token
	Exclusive = NoFiles | NoCommon
)

// OptionEntry is one declared option, or — when both ShortOpt and LongOpt
// are empty — a positional-argument declaration (spec §3).
type OptionEntry struct {
	ShortOpt   byte // 0 means "none"
	LongOpt    string
	ArgSpec    string
	Desc       string
	Condition  string
	ResultMode ResultMode
	OldMode    bool
	Flags      candidate.Flags
}

// HasShort reports whether the entry declares a short option letter.
func (o OptionEntry) HasShort() bool { return o.ShortOpt != 0 }

// HasLong reports whether the entry declares a long option name.
func (o OptionEntry) HasLong() bool { return o.LongOpt != "" }

// IsPositional reports whether the entry is a bare positional-argument rule.
func (o OptionEntry) IsPositional() bool { return !o.HasShort() && !o.HasLong() }

// AcceptsOptionalValue reports whether this is a GNU long option whose
// value, if any, must arrive attached via '=' rather than as a following
// token (arg_spec present, NO_COMMON unset, long option, not old-style).
func (o OptionEntry) AcceptsOptionalValue() bool {
	return !o.OldMode && o.HasLong() && o.ArgSpec != "" && o.ResultMode&NoCommon == 0
}

// Schema is the per-command option set (spec §3). The option list and
// ShortOptStr derived view are guarded by muOpts (L_opts); every other field
// is immutable after creation except Authoritative, guarded by the store's
// L_store lock held by the owning Store.
type Schema struct {
	Cmd           string
	CmdIsPath     bool
	Authoritative bool
	Order         uint64

	muOpts      sync.Mutex
	options     *deque.Deque // of OptionEntry, newest pushed to the front
	shortOptStr string
}

// ShortOptStr returns the derived short-option view under the option lock.
func (s *Schema) ShortOptStr() string {
	s.muOpts.Lock()
	defer s.muOpts.Unlock()
	return s.shortOptStr
}

// Snapshot is a value-type, lock-free copy of a schema's option list taken
// under both locks, safe to iterate after every lock is released (spec §9).
type Snapshot struct {
	Cmd           string
	CmdIsPath     bool
	Authoritative bool
	Order         uint64
	ShortOptStr   string
	Options       []OptionEntry
}

// drainToSlice pops every element front-to-back into a slice, then restores
// the deque to its original content and order by pushing back from the
// slice's tail. Used instead of indexed access, which the deque does not
// expose, to read the list without disturbing it.
func (s *Schema) drainToSlice() []OptionEntry {
	out := make([]OptionEntry, 0, s.options.Len())
	for s.options.Len() > 0 {
		v, _ := s.options.PopFront()
		out = append(out, v.(OptionEntry))
	}
	for i := len(out) - 1; i >= 0; i-- {
		s.options.PushFront(out[i])
	}
	return out
}

func (s *Schema) snapshot() Snapshot {
	s.muOpts.Lock()
	defer s.muOpts.Unlock()
	return Snapshot{
		Cmd:           s.Cmd,
		CmdIsPath:     s.CmdIsPath,
		Authoritative: s.Authoritative,
		Order:         s.Order,
		ShortOptStr:   s.shortOptStr,
		Options:       s.drainToSlice(),
	}
}

func (s *Schema) pushFront(opt OptionEntry) {
	s.muOpts.Lock()
	defer s.muOpts.Unlock()
	s.options.PushFront(opt)
	if opt.HasShort() {
		s.shortOptStr += string(opt.ShortOpt)
		if opt.ResultMode&NoCommon != 0 {
			s.shortOptStr += ":"
		}
	}
}

// removeMatching removes every option matching shortOpt or longOpt (either
// may be zero/empty to mean "don't match on this identifier"), rebuilding
// ShortOptStr from what remains. Returns the remaining option count.
func (s *Schema) removeMatching(shortOpt byte, longOpt string) int {
	s.muOpts.Lock()
	defer s.muOpts.Unlock()

	// kept collects survivors while draining front-to-back, so kept is in
	// newest-to-oldest order; index len-1 downto 0 is therefore oldest-to-
	// newest (chronological insertion order).
	kept := make([]OptionEntry, 0, s.options.Len())
	for s.options.Len() > 0 {
		v, _ := s.options.PopFront()
		opt := v.(OptionEntry)
		match := (shortOpt != 0 && opt.ShortOpt == shortOpt) || (longOpt != "" && opt.LongOpt == longOpt)
		if !match {
			kept = append(kept, opt)
		}
	}

	s.shortOptStr = ""
	for i := len(kept) - 1; i >= 0; i-- {
		opt := kept[i]
		s.options.PushFront(opt)
		if opt.HasShort() {
			s.shortOptStr += string(opt.ShortOpt)
			if opt.ResultMode&NoCommon != 0 {
				s.shortOptStr += ":"
			}
		}
	}
	return s.options.Len()
}

func (s *Schema) clear() {
	s.muOpts.Lock()
	defer s.muOpts.Unlock()
	s.options = deque.New()
	s.shortOptStr = ""
}

type key struct {
	cmdIsPath bool
	cmd       string
}

// Store is the process-wide set of schemas, keyed by (cmd_is_path, cmd).
type Store struct {
	mu      sync.Mutex // L_store, acquired before any schema's muOpts (L_opts)
	schemas map[key]*Schema
	order   atomic.Uint64
}

// New creates an empty store.
func New() *Store {
	return &Store{schemas: make(map[key]*Schema)}
}

func (st *Store) getOrCreate(cmd string, cmdIsPath bool) *Schema {
	k := key{cmdIsPath, cmd}
	sc, ok := st.schemas[k]
	if !ok {
		sc = &Schema{Cmd: cmd, CmdIsPath: cmdIsPath, Order: st.order.Add(1), options: deque.New()}
		st.schemas[k] = sc
	}
	return sc
}

// Add upserts the schema for (cmd, cmdIsPath) and inserts one option entry
// at the head of its option list.
// If the entry has no short/long identifier it is a positional rule.
func (st *Store) Add(cmd string, cmdIsPath bool, opt OptionEntry) {
	st.mu.Lock()
	sc := st.getOrCreate(cmd, cmdIsPath)
	st.mu.Unlock()

	sc.pushFront(opt)
}

// Remove deletes matching option entries. If both shortOpt and longOpt are
// zero/empty, every option under the schema is cleared. If the option list
// becomes empty, the schema itself is deleted from the store.
func (st *Store) Remove(cmd string, cmdIsPath bool, shortOpt byte, longOpt string) {
	st.mu.Lock()
	k := key{cmdIsPath, cmd}
	sc, ok := st.schemas[k]
	st.mu.Unlock()
	if !ok {
		return
	}

	var remaining int
	if shortOpt == 0 && longOpt == "" {
		sc.clear()
		remaining = 0
	} else {
		remaining = sc.removeMatching(shortOpt, longOpt)
	}

	if remaining == 0 {
		st.mu.Lock()
		delete(st.schemas, k)
		st.mu.Unlock()
	}
}

// SetAuthoritative upserts the schema and sets its Authoritative flag.
func (st *Store) SetAuthoritative(cmd string, cmdIsPath bool, authoritative bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sc := st.getOrCreate(cmd, cmdIsPath)
	sc.Authoritative = authoritative
}

// FindMatching returns a lock-free snapshot of every schema whose glob
// pattern matches cmdName (cmd_is_path=false schemas) or cmdPath
// (cmd_is_path=true schemas). cmdPath may be empty if the command could not
// be resolved to a path, in which case path schemas never match.
func (st *Store) FindMatching(cmdName, cmdPath string) []Snapshot {
	st.mu.Lock()
	defer func() { st.mu.Unlock() }()

	var out []Snapshot
	for _, sc := range st.schemas {
		target := cmdName
		if sc.CmdIsPath {
			if cmdPath == "" {
				continue
			}
			target = cmdPath
		}
		ok, err := filepath.Match(sc.Cmd, target)
		if err != nil || !ok {
			// A literal, wildcard-free pattern that simply doesn't match
			// filepath.Match syntax rules still compares equal literally.
			if sc.Cmd == target {
				ok = true
			} else {
				continue
			}
		}
		out = append(out, sc.snapshot())
	}
	return out
}

// All returns every schema snapshot, sorted by key: cmd_is_path false
// before true, then lexicographically on Cmd.
func (st *Store) All() []Snapshot {
	st.mu.Lock()
	snaps := make([]Snapshot, 0, len(st.schemas))
	for _, sc := range st.schemas {
		snaps = append(snaps, sc.snapshot())
	}
	st.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool {
		a, b := snaps[i], snaps[j]
		if a.CmdIsPath != b.CmdIsPath {
			return !a.CmdIsPath
		}
		return a.Cmd < b.Cmd
	})
	return snaps
}

// ByOrder returns every schema snapshot sorted by creation order, the order
// the printer (spec §4.8) emits schemas in.
func (st *Store) ByOrder() []Snapshot {
	st.mu.Lock()
	snaps := make([]Snapshot, 0, len(st.schemas))
	for _, sc := range st.schemas {
		snaps = append(snaps, sc.snapshot())
	}
	st.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Order < snaps[j].Order })
	return snaps
}

// ValidateOption reports whether opt (e.g. "-x", "-ab", or "--branch") is
// accepted by any schema matching cmdName/cmdPath (spec §4.3/§7). "" is
// rejected; a bare single character (e.g. "-") and "--" are trivially valid
// before any schema is consulted or the leading '-' is checked. If every matching schema is authoritative and none
// declares the option, ok is false and err describes the rejection. If no
// matching schema is authoritative, the result is the "can't say" true
// unless strictAuthoritative requests the Open-Question (a) knob that turns
// that ambiguity into a hard false.
func ValidateOption(schemas []Snapshot, opt string, strictAuthoritative bool) (ok bool, err error) {
	if opt == "" {
		return false, fmt.Errorf("option does not begin with a '-': %s", opt)
	}
	if len(opt) == 1 || opt == "--" {
		return true, nil
	}
	if opt[0] != '-' {
		return false, fmt.Errorf("option does not begin with a '-': %s", opt)
	}

	if strings.HasPrefix(opt, "--") {
		return validateGNUOption(schemas, opt, strictAuthoritative)
	}
	return validateShortOption(schemas, opt, strictAuthoritative)
}

// validateGNUOption resolves a "--name" or "--name=value" option against
// every schema's long options, allowing GNU-style unambiguous prefix
// abbreviation: "--name" need not be a declared option's full name as long
// as it is a prefix of exactly one of them.
func validateGNUOption(schemas []Snapshot, opt string, strictAuthoritative bool) (bool, error) {
	name := opt[2:]
	if idx := strings.IndexByte(name, '='); idx >= 0 {
		name = name[:idx]
	}

	anyAuthoritative := false
	exact := false
	matches := map[string]struct{}{}
	for _, sc := range schemas {
		if sc.Authoritative {
			anyAuthoritative = true
		}
		for _, o := range sc.Options {
			if o.OldMode || !o.HasLong() {
				continue
			}
			if o.LongOpt == name {
				exact = true
			}
			if strings.HasPrefix(o.LongOpt, name) {
				matches[o.LongOpt] = struct{}{}
			}
		}
	}

	if exact || len(matches) == 1 {
		return true, nil
	}
	if !anyAuthoritative {
		if strictAuthoritative {
			return false, fmt.Errorf("Unknown option: %s", opt)
		}
		return true, nil
	}
	if len(matches) == 0 {
		return false, fmt.Errorf("Unknown option: %s", opt)
	}
	return false, fmt.Errorf("Multiple matches for option: %s", opt)
}

// validateShortOption resolves a "-x" old-style option or a bundle of short
// switches ("-ab"), requiring every byte of the bundle to be declared by
// some matching schema.
func validateShortOption(schemas []Snapshot, opt string, strictAuthoritative bool) (bool, error) {
	anyAuthoritative := false
	for _, sc := range schemas {
		if sc.Authoritative {
			anyAuthoritative = true
		}
		if oldStyleDeclared(sc, opt) {
			return true, nil
		}
	}

	for i := 1; i < len(opt); i++ {
		declared := false
		for _, sc := range schemas {
			if shortOptDeclared(sc, opt[i]) {
				declared = true
				break
			}
		}
		if declared {
			continue
		}
		if !anyAuthoritative {
			if strictAuthoritative {
				return false, fmt.Errorf("Unknown option: %s", string(opt[i]))
			}
			return true, nil
		}
		return false, fmt.Errorf("Unknown option: %s", string(opt[i]))
	}
	return true, nil
}

func oldStyleDeclared(sc Snapshot, opt string) bool {
	for _, o := range sc.Options {
		if o.OldMode && o.LongOpt == opt[1:] {
			return true
		}
	}
	return false
}

func shortOptDeclared(sc Snapshot, c byte) bool {
	return strings.IndexByte(sc.ShortOptStr, c) >= 0
}
