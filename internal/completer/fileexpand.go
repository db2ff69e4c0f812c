package completer

import (
	"context"
	"strings"

	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/collab"
)

// FileExpand implements complete_param_expand: file-path completion for the
// current token, with the flag composition spec §4.4 mandates. doFile
// forces a full filesystem listing (wildcards included) rather than the
// narrower glob-prefix expansion used for plain argument values.
func FileExpand(ctx context.Context, token string, doFile, autosuggest, fuzzy bool, expander collab.Expander) []candidate.Candidate {
	if eq := strings.LastIndexByte(token, '='); eq >= 0 && strings.HasPrefix(token, "-") {
		token = token[eq+1:]
	}

	flags := collab.SkipCmdSubst | collab.AcceptIncomplete
	if !doFile {
		flags |= collab.SkipWildcards
	}
	if autosuggest || doFile {
		flags |= collab.NoDescriptions
	}
	if fuzzy && !strings.HasPrefix(token, "-") {
		flags |= collab.FuzzyMatch
	}

	results, err := expander.Expand(token, flags)
	if err != nil {
		return nil
	}

	opts := Options{Descriptions: flags&collab.NoDescriptions == 0}
	return toCandidates(results, opts)
}
