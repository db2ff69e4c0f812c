// Package varcomplete implements variable-reference completion
// ("$NAME") and system-user completion ("~user"), spec §4.5.
package varcomplete

import (
	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/collab"
	"github.com/shellkit/complete/internal/matchkind"
	"github.com/shellkit/complete/internal/shellword"
)

// Variable completes a "$NAME" reference ending at the cursor inside
// token. It reports the byte offset within token where the variable run
// begins (the '$'), so the caller can splice the replacement in place of
// token[start:] rather than the whole token — the characters before start
// were never part of the reference and must survive the edit.
func Variable(token string, env collab.EnvStore, fuzzy, descriptions bool) (cands []candidate.Candidate, start int, ok bool) {
	start, ok = shellword.VariableRun(token)
	if !ok {
		return nil, 0, false
	}
	query := token[start:]

	for _, name := range env.Names() {
		word := "$" + name
		m := matchkind.Evaluate(query, word, fuzzy)
		if !matchkind.IsMatch(m) {
			continue
		}
		text, flags := matchkind.SuffixOrReplace(query, word, m)
		// A completed variable reference is routinely followed by more
		// text ("$HOME/bin"), so never auto-insert a trailing space.
		flags |= candidate.NoSpace
		desc := ""
		if descriptions {
			if v, ok := env.Get(name); ok {
				desc = v
			}
		}
		cands = append(cands, candidate.New(text, desc, m, flags))
	}
	return cands, start, true
}
