// Package cmdline implements the default collab.Parser: a quote- and
// nesting-aware scanner over raw command-line text. It does not build a full
// shell AST (mvdan.cc/sh/v3/syntax's exact node-position API could not be
// confirmed against any source available in this tree, so the parser
// collaborator is grounded on the same character-scanning style as
// internal/shellword instead, extended to track $()/backtick nesting and
// statement separators). mvdan.cc/sh/v3 is still wired in, for subshell
// execution, in internal/shellhost.
package cmdline

import (
	"github.com/shellkit/complete/internal/collab"
	"github.com/shellkit/complete/internal/shellword"
)

type scanState struct {
	quote shellword.QuoteState
	// subStack holds the start offset (just past the opening "$(" or "`")
	// of every currently-open command substitution, outermost first.
	subStack []substSpan
}

type substSpan struct {
	start    int
	backtick bool
}

// scan walks line once, tracking quote state and substitution nesting,
// calling onOpen whenever a command substitution opens and onClose whenever
// one closes.
func scan(line string, onOpen func(pos int, backtick bool), onClose func(span collab.Span, backtick bool)) {
	st := scanState{quote: shellword.Unquoted}
	i := 0
	for i < len(line) {
		c := line[i]
		switch st.quote {
		case shellword.Unquoted:
			switch {
			case c == '\\' && i+1 < len(line):
				i += 2
				continue
			case c == '\'':
				st.quote = shellword.SingleQuoted
			case c == '"':
				st.quote = shellword.DoubleQuoted
			case c == '$' && i+1 < len(line) && line[i+1] == '(':
				st.subStack = append(st.subStack, substSpan{start: i + 2})
				onOpen(i, false)
				i += 2
				continue
			case c == '`' && (len(st.subStack) == 0 || !st.subStack[len(st.subStack)-1].backtick):
				st.subStack = append(st.subStack, substSpan{start: i + 1, backtick: true})
				onOpen(i, true)
			case c == ')' && len(st.subStack) > 0 && !st.subStack[len(st.subStack)-1].backtick:
				top := st.subStack[len(st.subStack)-1]
				st.subStack = st.subStack[:len(st.subStack)-1]
				onClose(collab.Span{Begin: top.start, End: i}, false)
			case c == '`' && len(st.subStack) > 0 && st.subStack[len(st.subStack)-1].backtick:
				top := st.subStack[len(st.subStack)-1]
				st.subStack = st.subStack[:len(st.subStack)-1]
				onClose(collab.Span{Begin: top.start, End: i}, true)
			}
		case shellword.SingleQuoted:
			if c == '\'' {
				st.quote = shellword.Unquoted
			}
		case shellword.DoubleQuoted:
			switch {
			case c == '\\' && i+1 < len(line):
				i += 2
				continue
			case c == '"':
				st.quote = shellword.Unquoted
			case c == '$' && i+1 < len(line) && line[i+1] == '(':
				st.subStack = append(st.subStack, substSpan{start: i + 2})
				onOpen(i, false)
				i += 2
				continue
			}
		}

		i++
	}
}

// Parser is the default collab.Parser implementation.
type Parser struct{}

// New returns a Parser.
func New() Parser { return Parser{} }

// InnermostCommandSubstitution implements collab.Parser.
func (Parser) InnermostCommandSubstitution(line string, cursor int) (collab.Span, bool) {
	var best collab.Span
	found := false
	scan(line, func(int, bool) {}, func(span collab.Span, _ bool) {
		if cursor < span.Begin || cursor > span.End {
			return
		}
		if !found || (span.End-span.Begin) < (best.End-best.Begin) {
			best = span
			found = true
		}
	})
	return best, found
}

// TokenAt implements collab.Parser by delegating to the pure-string
// tokenizer, since token boundaries don't depend on substitution nesting.
func (Parser) TokenAt(line string, pos int) (string, collab.Span) {
	tok, b, e := shellword.TokenAt(line, pos)
	return tok, collab.Span{Begin: b, End: e}
}

// isSeparatorRune reports whether c is a byte that ends a simple command at
// depth 0, outside quotes and substitutions.
func isSeparatorRune(c byte) bool { return c == ';' || c == '|' || c == '&' || c == '\n' }

// words splits segment into whitespace-delimited, quote- and substitution-
// aware word spans, relative to segment's own offsets.
func words(segment string) []collab.Span {
	var spans []collab.Span
	quote := shellword.Unquoted
	depth := 0
	wordStart := -1
	i := 0
	flush := func(end int) {
		if wordStart >= 0 {
			spans = append(spans, collab.Span{Begin: wordStart, End: end})
			wordStart = -1
		}
	}
	for i < len(segment) {
		c := segment[i]
		switch quote {
		case shellword.Unquoted:
			switch {
			case c == '\\' && i+1 < len(segment):
				if wordStart < 0 {
					wordStart = i
				}
				i += 2
				continue
			case c == '\'':
				if wordStart < 0 {
					wordStart = i
				}
				quote = shellword.SingleQuoted
			case c == '"':
				if wordStart < 0 {
					wordStart = i
				}
				quote = shellword.DoubleQuoted
			case c == '$' && i+1 < len(segment) && segment[i+1] == '(':
				if wordStart < 0 {
					wordStart = i
				}
				depth++
				i += 2
				continue
			case c == '`':
				if wordStart < 0 {
					wordStart = i
				}
				depth++
			case depth == 0 && (c == ' ' || c == '\t'):
				flush(i)
			case depth == 0 && isSeparatorRune(c):
				flush(i)
				i++
				continue
			default:
				if wordStart < 0 {
					wordStart = i
				}
			}
		case shellword.SingleQuoted:
			if c == '\'' {
				quote = shellword.Unquoted
			}
		case shellword.DoubleQuoted:
			switch {
			case c == '\\' && i+1 < len(segment):
				i += 2
				continue
			case c == '"':
				quote = shellword.Unquoted
			case c == '$' && i+1 < len(segment) && segment[i+1] == '(':
				depth++
				i += 2
				continue
			}
		}
		if depth > 0 && c == ')' {
			depth--
		}
		i++
	}
	flush(len(segment))
	return spans
}

// statementAt returns the [begin,end) span, relative to line, of the
// top-level simple-command segment containing pos.
func statementAt(line string, pos int) collab.Span {
	depth := 0
	quote := shellword.Unquoted
	segStart := 0
	i := 0
	for i < len(line) {
		c := line[i]
		switch quote {
		case shellword.Unquoted:
			switch {
			case c == '\\' && i+1 < len(line):
				i += 2
				continue
			case c == '\'':
				quote = shellword.SingleQuoted
			case c == '"':
				quote = shellword.DoubleQuoted
			case c == '$' && i+1 < len(line) && line[i+1] == '(':
				depth++
				i += 2
				continue
			case c == '`':
				depth++
			case depth == 0 && isSeparatorRune(c):
				if pos >= segStart && pos <= i {
					return collab.Span{Begin: segStart, End: i}
				}
				// && / || consume a second char of the same operator.
				if (c == '&' || c == '|') && i+1 < len(line) && line[i+1] == c {
					i++
				}
				segStart = i + 1
			}
		case shellword.SingleQuoted:
			if c == '\'' {
				quote = shellword.Unquoted
			}
		case shellword.DoubleQuoted:
			switch {
			case c == '\\' && i+1 < len(line):
				i += 2
				continue
			case c == '"':
				quote = shellword.Unquoted
			case c == '$' && i+1 < len(line) && line[i+1] == '(':
				depth++
				i += 2
				continue
			}
		}
		if depth > 0 && c == ')' {
			depth--
		}
		i++
	}
	return collab.Span{Begin: segStart, End: len(line)}
}

// PlainStatementAt implements collab.Parser.
func (p Parser) PlainStatementAt(line string, pos int) (collab.PlainStatement, bool) {
	seg := statementAt(line, pos)
	body := line[seg.Begin:seg.End]
	ws := words(body)
	if len(ws) == 0 {
		return collab.PlainStatement{}, false
	}
	// Shift word spans back into line-relative offsets.
	for i := range ws {
		ws[i].Begin += seg.Begin
		ws[i].End += seg.Begin
	}

	decoration := collab.DecorationNone
	cmdIdx := 0
	if text := shellword.Unescape(line[ws[0].Begin:ws[0].End]); len(ws) > 1 {
		switch text {
		case "command":
			decoration = collab.DecorationExec
			cmdIdx = 1
		case "builtin":
			decoration = collab.DecorationBuiltin
			cmdIdx = 1
		case "exec":
			decoration = collab.DecorationExec
			cmdIdx = 1
		}
	}
	if cmdIdx >= len(ws) {
		return collab.PlainStatement{}, false
	}

	hadDoubleDash := false
	for _, w := range ws[cmdIdx+1:] {
		if w.Begin > pos {
			break
		}
		if line[w.Begin:w.End] == "--" {
			hadDoubleDash = true
		}
	}

	return collab.PlainStatement{
		Decoration:    decoration,
		CommandWord:   ws[cmdIdx],
		Args:          ws[cmdIdx+1:],
		HadDoubleDash: hadDoubleDash,
	}, true
}
