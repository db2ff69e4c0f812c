// Package matchkind classifies how a query matched a candidate string,
// producing the fuzzy match descriptor used throughout the engine (spec §3).
package matchkind

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/shellkit/complete/internal/candidate"
)

// Evaluate classifies text against query. When fuzzy is false only exact,
// prefix and prefix_case_insensitive are permitted outcomes; anything weaker
// degrades to MatchNone. An empty query always prefix-matches.
func Evaluate(query, text string, fuzzyEnabled bool) candidate.Match {
	if query == "" {
		return candidate.Match{Kind: candidate.MatchPrefix}
	}
	if text == query {
		return candidate.Match{Kind: candidate.MatchExact}
	}
	if strings.HasPrefix(text, query) {
		return candidate.Match{Kind: candidate.MatchPrefix}
	}

	lowText, lowQuery := strings.ToLower(text), strings.ToLower(query)
	if strings.HasPrefix(lowText, lowQuery) {
		return candidate.Match{Kind: candidate.MatchPrefixCaseInsensitive, CaseFold: true}
	}

	if !fuzzyEnabled {
		return candidate.Match{Kind: candidate.MatchNone}
	}

	if lowText == lowQuery {
		return candidate.Match{Kind: candidate.MatchExactCaseInsensitive, CaseFold: true}
	}
	if strings.Contains(text, query) {
		return candidate.Match{Kind: candidate.MatchSubstring}
	}
	if strings.Contains(lowText, lowQuery) {
		return candidate.Match{Kind: candidate.MatchSubstring, CaseFold: true}
	}

	if matches := fuzzy.Find(query, []string{text}); len(matches) > 0 {
		return candidate.Match{Kind: candidate.MatchSubsequence}
	}
	return candidate.Match{Kind: candidate.MatchNone}
}

// IsMatch reports whether m represents a usable (non-None) match.
func IsMatch(m candidate.Match) bool { return m.Kind != candidate.MatchNone }

// RequiresFullReplace reports whether a candidate produced from this match
// kind must replace the whole token rather than append a suffix — true for
// every kind except an exact or plain prefix match, per spec §4.5.
func RequiresFullReplace(k candidate.MatchKind) bool {
	switch k {
	case candidate.MatchPrefix, candidate.MatchExact:
		return false
	default:
		return true
	}
}

// SuffixOrReplace turns a matched word into candidate text: a bare suffix
// that extends the already-typed query in place for a plain prefix match,
// or the full word with ReplacesToken set when the match kind (case-fold,
// substring, subsequence) means the typed characters aren't a literal
// prefix of word and can't simply be appended to (spec §4.5).
func SuffixOrReplace(query, word string, m candidate.Match) (string, candidate.Flags) {
	if !IsMatch(m) {
		return "", 0
	}
	if !RequiresFullReplace(m.Kind) && len(word) >= len(query) {
		return word[len(query):], 0
	}
	return word, candidate.ReplacesToken
}
