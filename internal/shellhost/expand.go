package shellhost

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shellkit/complete/internal/collab"
)

// Expander is the default collab.Expander: filesystem globbing and
// directory listing via path/filepath, grounded on the same "list, then
// filter by stat" shape filesystem completers use across the example pack.
type Expander struct {
	resolver *PathResolver
}

// NewExpander returns an Expander holding resolver. Expand does not consult
// it; ExecutablesOnly filters each match by its own executable bits.
func NewExpander(resolver *PathResolver) *Expander {
	return &Expander{resolver: resolver}
}

// Expand implements collab.Expander. Variable and command-substitution
// expansion are left to the shell host proper (spec §1 lists those as the
// caller's responsibility via the parser/env collaborators); this
// implementation only performs filesystem globbing and directory listing,
// which is what spec §4.4's file completer actually delegates here.
func (e *Expander) Expand(token string, flags collab.ExpandFlags) ([]collab.ExpandResult, error) {
	if token == "" {
		token = "*"
	} else if flags&collab.SkipWildcards == 0 && !strings.ContainsAny(token, "*?[") {
		token += "*"
	}

	matches, err := filepath.Glob(token)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	out := make([]collab.ExpandResult, 0, len(matches))
	for _, m := range matches {
		info, statErr := os.Stat(m)
		isDir := statErr == nil && info.IsDir()
		if flags&collab.ExecutablesOnly != 0 {
			if isDir {
				// Directories always pass, so cd-style traversal still works.
			} else if statErr != nil || info.Mode()&0o111 == 0 {
				continue
			}
		}
		out = append(out, collab.ExpandResult{
			Text:          m,
			ReplacesToken: true,
			IsDirectory:   isDir,
		})
	}
	return out, nil
}

var _ collab.Expander = (*Expander)(nil)
