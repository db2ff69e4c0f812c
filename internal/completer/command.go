// Package completer implements command/function/builtin-name completion
// and file expansion (spec §4.4).
package completer

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/collab"
	"github.com/shellkit/complete/internal/matchkind"
)

// Options carries the session-level flags that shape completer output.
type Options struct {
	Descriptions bool
	Fuzzy        bool
	Autosuggest  bool
}

// Command implements complete_cmd: path lookup (or direct expansion for
// tokens containing '/' or starting with '~'), plus function and builtin
// name matching, restricted by decoration per spec §4.2.
func Command(ctx context.Context, token string, decoration collab.Decoration, expander collab.Expander, resolver collab.PathResolver, registry collab.Registry, exec collab.Executor, opts Options) []candidate.Candidate {
	var out []candidate.Candidate

	searchPath := decoration != collab.DecorationBuiltin
	searchFunctions := decoration == collab.DecorationNone
	searchBuiltins := decoration == collab.DecorationNone || decoration == collab.DecorationBuiltin

	if searchPath {
		if strings.ContainsRune(token, '/') || strings.HasPrefix(token, "~") {
			results, _ := expander.Expand(token, collab.SkipCmdSubst|collab.AcceptIncomplete|collab.ExecutablesOnly)
			out = append(out, toCandidates(results, opts)...)
		} else {
			for _, dir := range resolver.PathDirs() {
				results, _ := expander.Expand(dir+"/"+token, collab.SkipCmdSubst|collab.AcceptIncomplete|collab.ExecutablesOnly)
				for i := range results {
					if results[i].ReplacesToken {
						results[i].Text = strings.TrimPrefix(results[i].Text, dir+"/")
					}
				}
				out = append(out, toCandidates(results, opts)...)
			}
		}
	}

	if searchBuiltins {
		out = append(out, matchNames(registry.BuiltinNames(), token, opts, registry.BuiltinDescription)...)
	}
	if searchFunctions {
		names := registry.FunctionNames()
		if !strings.HasPrefix(token, "_") {
			names = withoutUnderscorePrefixed(names)
		}
		out = append(out, matchNames(names, token, opts, registry.FunctionDescription)...)
	}

	if opts.Descriptions && searchPath {
		out = applyCommandDescriptions(ctx, exec, token, out)
	}

	// Path lookup, functions, and builtins can independently surface the
	// same name (e.g. a function shadowing a builtin); keep one candidate
	// per distinct text, first source wins.
	return lo.UniqBy(out, func(c candidate.Candidate) string { return c.Text })
}

func withoutUnderscorePrefixed(names []string) []string {
	return lo.Filter(names, func(n string, _ int) bool { return !strings.HasPrefix(n, "_") })
}

// matchNames evaluates each name against token (prefix, or any fuzzy kind
// when opts.Fuzzy) and emits a full-replace candidate per hit — command
// names are always proposed whole, never as append-style suffixes, so the
// description-patching pass below can key off candidate.Text directly.
func matchNames(names []string, token string, opts Options, describe func(string) string) []candidate.Candidate {
	var out []candidate.Candidate
	for _, name := range names {
		m := matchkind.Evaluate(token, name, opts.Fuzzy)
		if !matchkind.IsMatch(m) {
			continue
		}
		desc := ""
		if opts.Descriptions {
			desc = describe(name)
		}
		out = append(out, candidate.New(name, desc, m, candidate.ReplacesToken|candidate.WithAutoSpace))
	}
	return out
}

func toCandidates(results []collab.ExpandResult, opts Options) []candidate.Candidate {
	out := make([]candidate.Candidate, 0, len(results))
	for _, r := range results {
		text := r.Text
		flags := candidate.Flags(0)
		if r.ReplacesToken {
			flags |= candidate.ReplacesToken
		}
		if r.IsDirectory {
			text += "/"
			flags |= candidate.NoSpace
		} else {
			flags |= candidate.WithAutoSpace
		}
		if r.AlreadyQuoted {
			flags |= candidate.DontEscape
		}
		desc := ""
		if opts.Descriptions {
			desc = r.Description
		}
		out = append(out, candidate.New(text, desc, candidate.Match{Kind: candidate.MatchPrefix}, flags))
	}
	return out
}

// applyCommandDescriptions implements complete_cmd_desc.
func applyCommandDescriptions(ctx context.Context, exec collab.Executor, token string, cands []candidate.Candidate) []candidate.Candidate {
	if len(token) < 2 || strings.ContainsAny(token, "*?[") {
		return cands
	}
	if len(cands) > 0 {
		allSlash := true
		for _, c := range cands {
			if !strings.HasSuffix(c.Text, "/") {
				allSlash = false
				break
			}
		}
		if allSlash {
			return cands
		}
	}

	raw, err := exec.RunDescriptionScript(ctx, token)
	if err != nil || raw == "" {
		return cands
	}

	descs := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		key, val, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		if val != "" {
			val = strings.ToUpper(val[:1]) + val[1:]
		}
		descs[key] = val
	}
	for i := range cands {
		if v, ok := descs[cands[i].Text]; ok {
			cands[i].Description = v
		}
	}
	return cands
}
