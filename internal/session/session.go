// Package session implements the completion driver (spec §4.2): the
// top-level algorithm that locates the token under the cursor, tries
// variable and user completion first, then falls through to command-name
// completion or the parameter matcher, and finally file expansion.
package session

import (
	"context"
	"strings"

	"github.com/shellkit/complete/internal/autoload"
	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/collab"
	"github.com/shellkit/complete/internal/completer"
	"github.com/shellkit/complete/internal/condition"
	"github.com/shellkit/complete/internal/match"
	"github.com/shellkit/complete/internal/shellword"
	"github.com/shellkit/complete/internal/store"
	"github.com/shellkit/complete/internal/varcomplete"
)

// Config bundles every collaborator the driver needs. Loader may be nil to
// disable autoloading entirely (a host with no on-disk definition files).
type Config struct {
	Parser   collab.Parser
	EnvStore collab.EnvStore
	Passwd   collab.PasswordDB
	Registry collab.Registry
	Resolver collab.PathResolver
	Expander collab.Expander
	Executor collab.Executor
	Store    *store.Store
	Cache    *condition.Cache
	Loader   *autoload.Loader
}

// Request carries one completion call's input and request flags (spec
// §4.2 "Session state").
type Request struct {
	Line         string
	Cursor       int
	Descriptions bool
	Fuzzy        bool
	Autosuggest  bool
}

// mutedExecutor stands in for the real collab.Executor under autosuggest
// mode, which must never execute user conditions or command substitutions
// (spec §4.2) — every method fails closed without touching the real
// subshell bridge.
type mutedExecutor struct{}

func (mutedExecutor) RunCondition(ctx context.Context, src string) (bool, error) { return false, nil }
func (mutedExecutor) RunArgSpec(ctx context.Context, src string) ([]string, error) {
	return nil, nil
}
func (mutedExecutor) RunDescriptionScript(ctx context.Context, cmd string) (string, error) {
	return "", nil
}

// Complete runs the driver algorithm and returns the resulting candidates.
func Complete(ctx context.Context, cfg Config, req Request) []candidate.Candidate {
	mode := condition.Default
	loadMode := autoload.Default
	exec := cfg.Executor
	if req.Autosuggest {
		mode = condition.Autosuggest
		loadMode = autoload.Autosuggest
		exec = mutedExecutor{}
	}

	// Step 1: operate inside the innermost command substitution, if any.
	text, base := req.Line, 0
	cursor := req.Cursor
	if span, ok := cfg.Parser.InnermostCommandSubstitution(req.Line, req.Cursor); ok {
		text, base = req.Line[span.Begin:span.End], span.Begin
		cursor = req.Cursor - base
	}

	// Step 2: the token under the cursor.
	token, tokenSpan := cfg.Parser.TokenAt(text, cursor)

	// Step 3: variable completion.
	if cfg.EnvStore != nil {
		if cands, _, ok := varcomplete.Variable(token, cfg.EnvStore, req.Fuzzy, req.Descriptions); ok && len(cands) > 0 {
			return cands
		}
	}

	// Step 4: user completion — only for a "~"-prefixed run without '/'.
	if cfg.Passwd != nil && strings.HasPrefix(token, "~") && !strings.Contains(token, "/") {
		if cands := varcomplete.User(ctx, token, cfg.Passwd, req.Fuzzy); len(cands) > 0 {
			return cands
		}
	}

	// Step 5: backtrack over trailing spaces, then locate the plain
	// statement enclosing the adjusted position.
	adjusted := cursor
	for adjusted > 0 && (text[adjusted-1] == ' ' || text[adjusted-1] == '\t') {
		adjusted--
	}
	backtracked := adjusted != cursor

	stmt, ok := cfg.Parser.PlainStatementAt(text, adjusted)
	if !ok {
		// Step 6.
		if req.Autosuggest && backtracked {
			return nil
		}
		return completer.FileExpand(ctx, token, true, req.Autosuggest, req.Fuzzy, cfg.Expander)
	}

	// Step 7.
	if cursor >= stmt.CommandWord.Begin && cursor <= stmt.CommandWord.End {
		cmdToken := text[stmt.CommandWord.Begin:stmt.CommandWord.End]
		return completer.Command(ctx, cmdToken, stmt.Decoration, cfg.Expander, cfg.Resolver, cfg.Registry, exec, completer.Options{
			Descriptions: req.Descriptions,
			Fuzzy:        req.Fuzzy,
			Autosuggest:  req.Autosuggest,
		})
	}

	cmdWord := shellword.Unescape(text[stmt.CommandWord.Begin:stmt.CommandWord.End])
	currentArg, previousArg, currentEmpty := argsAroundCursor(text, stmt, cursor)
	currentArg = shellword.Unescape(currentArg)
	previousArg = shellword.Unescape(previousArg)

	cmdIsPath := strings.ContainsRune(cmdWord, '/')
	cmdPath := ""
	if !cmdIsPath && cfg.Resolver != nil {
		cmdPath = cfg.Resolver.Resolve(cmdWord)
	}

	if cfg.Loader != nil {
		cfg.Loader.Load(ctx, cmdWord, cmdIsPath, !req.Autosuggest, loadMode)
	}

	var schemas []store.Snapshot
	if cfg.Store != nil {
		schemas = cfg.Store.FindMatching(cmdWord, cmdPath)
	}

	matchReq := match.Request{
		PreviousToken: previousArg,
		CurrentToken:  currentArg,
		UseSwitches:   !stmt.HadDoubleDash,
		Fuzzy:         req.Fuzzy,
		Descriptions:  req.Descriptions,
	}
	out, doFile := match.Run(ctx, schemas, matchReq, cfg.Cache, mode, exec)

	// Step 8.
	if len(out) == 0 {
		doFile = true
	}
	if req.Autosuggest && currentEmpty {
		doFile = false
	}
	if doFile {
		out = append(out, completer.FileExpand(ctx, tokenText(text, tokenSpan), false, req.Autosuggest, req.Fuzzy, cfg.Expander)...)
	}
	return out
}

func tokenText(text string, span collab.Span) string {
	if span.Empty() {
		return ""
	}
	return text[span.Begin:span.End]
}

// argsAroundCursor locates the argument span containing cursor (the
// "current" argument) and the one immediately before it. If cursor falls
// between arguments rather than inside one, current is empty and previous
// is the nearest preceding argument.
func argsAroundCursor(text string, stmt collab.PlainStatement, cursor int) (current, previous string, currentEmpty bool) {
	for i, sp := range stmt.Args {
		if cursor >= sp.Begin && cursor <= sp.End {
			current = text[sp.Begin:sp.End]
			if i > 0 {
				previous = text[stmt.Args[i-1].Begin:stmt.Args[i-1].End]
			}
			return current, previous, current == ""
		}
	}
	for i := len(stmt.Args) - 1; i >= 0; i-- {
		if stmt.Args[i].End <= cursor {
			previous = text[stmt.Args[i].Begin:stmt.Args[i].End]
			break
		}
	}
	return "", previous, true
}
