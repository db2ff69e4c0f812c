package varcomplete

import (
	"context"
	"strings"
	"time"

	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/collab"
	"github.com/shellkit/complete/internal/matchkind"
)

// passwordLookupBudget bounds how long a "~user" completion may spend
// enumerating the system user database before giving up (spec §4.5).
const passwordLookupBudget = 200 * time.Millisecond

// User completes a "~user" token against the system password database.
// token is expected to start with '~' (bare "~" completes every user).
// Enumeration is budgeted: a slow or hanging PasswordDB self-terminates
// after passwordLookupBudget and User returns nil rather than blocking the
// session.
func User(ctx context.Context, token string, db collab.PasswordDB, fuzzy bool) []candidate.Candidate {
	if !strings.HasPrefix(token, "~") {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, passwordLookupBudget)
	defer cancel()

	type result struct {
		entries []collab.PasswordEntry
		err     error
	}
	done := make(chan result, 1)
	go func() {
		entries, err := db.Entries()
		done <- result{entries, err}
	}()

	var entries []collab.PasswordEntry
	select {
	case r := <-done:
		if r.err != nil {
			return nil
		}
		entries = r.entries
	case <-ctx.Done():
		return nil
	}

	var out []candidate.Candidate
	for _, e := range entries {
		word := "~" + e.Name
		m := matchkind.Evaluate(token, word, fuzzy)
		if !matchkind.IsMatch(m) {
			continue
		}
		text, flags := matchkind.SuffixOrReplace(token, word, m)
		// A completed username is always followed by a path separator
		// (or nothing at all); never auto-insert a space.
		flags |= candidate.NoSpace
		out = append(out, candidate.New(text, "", m, flags))
	}
	return out
}
