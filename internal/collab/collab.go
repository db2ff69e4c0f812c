// Package collab defines the narrow interfaces the completion engine needs
// from components spec.md declares out of scope: the command-line parser,
// wildcard/glob expansion, the environment store, the function/builtin
// registries, and subshell execution. The engine (pkg/complete) depends only
// on these interfaces; internal/shellhost provides the default, real
// implementations used outside of tests.
package collab

import "context"

// Decoration constrains which lookup sources apply to a command word
// (spec GLOSSARY).
type Decoration int

const (
	DecorationNone Decoration = iota
	DecorationCommand
	DecorationExec
	DecorationBuiltin
)

// Span is a byte-offset range [Begin, End) within a command line.
type Span struct {
	Begin, End int
}

func (s Span) Empty() bool { return s.Begin >= s.End }

// PlainStatement is a parsed command invocation: a command word, its
// decoration, and its argument list (spec GLOSSARY).
type PlainStatement struct {
	Decoration  Decoration
	CommandWord Span
	Args        []Span
	// HadDoubleDash is true when a bare "--" argument precedes the cursor,
	// per spec §4.2 step 7 ("use_switches = !had_double_dash").
	HadDoubleDash bool
}

// Parser locates the innermost command-substitution span containing a
// position, the token under a byte offset, and the plain statement
// enclosing a position (spec §1, "out of scope" parser collaborator).
type Parser interface {
	// InnermostCommandSubstitution returns the [begin,end) byte span of the
	// innermost command-substitution body containing cursor, or ok=false if
	// cursor is not inside one.
	InnermostCommandSubstitution(line string, cursor int) (span Span, ok bool)
	// TokenAt returns the token under byte offset pos, with its span.
	TokenAt(line string, pos int) (token string, span Span)
	// PlainStatementAt returns the plain statement enclosing pos, or
	// ok=false if pos is not inside any command invocation (e.g. blank
	// line, or inside only a comment).
	PlainStatementAt(line string, pos int) (stmt PlainStatement, ok bool)
}

// ExpandFlags mirrors the flags complete_param_expand passes to
// expand_string (spec §4.4).
type ExpandFlags uint8

const (
	SkipCmdSubst ExpandFlags = 1 << iota
	AcceptIncomplete
	SkipWildcards
	NoDescriptions
	FuzzyMatch
	ExecutablesOnly
)

// ExpandResult is one expansion of a token into a candidate string.
type ExpandResult struct {
	Text           string
	Description    string
	ReplacesToken  bool
	IsDirectory    bool
	AlreadyQuoted  bool
}

// Expander performs wildcard/glob expansion and filesystem traversal
// (spec §1, "out of scope" expand_string collaborator).
type Expander interface {
	Expand(token string, flags ExpandFlags) ([]ExpandResult, error)
}

// EnvStore is the environment variable store (spec §1, env_get/env_names).
type EnvStore interface {
	Get(name string) (value string, ok bool)
	Names() []string
}

// Registry exposes function and builtin name/description lookups
// (spec §1, function_names/function_description/builtin_names/builtin_description).
type Registry interface {
	FunctionNames() []string
	FunctionDescription(name string) string
	BuiltinNames() []string
	BuiltinDescription(name string) string
}

// Executor runs source fragments as a subshell, for condition evaluation,
// arg_spec evaluation, and description-script evaluation (spec §1, §4.6).
type Executor interface {
	// RunCondition executes src and reports whether it exited zero.
	RunCondition(ctx context.Context, src string) (bool, error)
	// RunArgSpec executes src as the shell's argument evaluator and returns
	// the resulting words.
	RunArgSpec(ctx context.Context, src string) ([]string, error)
	// RunDescriptionScript invokes the shell's description helper for cmd
	// and returns its stdout.
	RunDescriptionScript(ctx context.Context, cmd string) (string, error)
}

// PasswordEntry is one row of the system user database.
type PasswordEntry struct {
	Name string
	Home string
}

// PasswordDB enumerates system users for '~user' completion (spec §4.5).
type PasswordDB interface {
	Entries() ([]PasswordEntry, error)
}

// PathResolver resolves a bare command name to its PATH-looked-up absolute
// path, or "" if not found.
type PathResolver interface {
	Resolve(name string) string
	PathDirs() []string
}
