// Package match implements the parameter matcher (spec §4.3): given the
// unescaped command, previous token, and current token of a plain
// statement's argument list, it consults every completion schema matching
// the command and produces switch- and value-completion candidates.
package match

import (
	"context"
	"strings"

	"github.com/shellkit/complete/internal/argspec"
	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/collab"
	"github.com/shellkit/complete/internal/condition"
	"github.com/shellkit/complete/internal/matchkind"
	"github.com/shellkit/complete/internal/store"
)

// Request bundles the matcher's inputs, all already unescaped by the
// caller per spec §4.2 step 7.
type Request struct {
	PreviousToken string
	CurrentToken  string
	UseSwitches   bool
	Fuzzy         bool
	Descriptions  bool
}

// Run matches schemas (a lock-free snapshot already taken by the caller,
// per spec §4.1/§9) against req, appending every candidate it produces and
// returning whether the driver should still fall back to file expansion.
func Run(ctx context.Context, schemas []store.Snapshot, req Request, cache *condition.Cache, mode condition.Mode, exec collab.Executor) ([]candidate.Candidate, bool) {
	var out []candidate.Candidate
	useFiles := true

	for _, sc := range schemas {
		localFiles, localCommon := true, true

		if req.UseSwitches && strings.HasPrefix(req.CurrentToken, "-") {
			runPhaseA(ctx, sc, req, cache, mode, exec, &out, &localFiles, &localCommon)
		}
		if req.UseSwitches && strings.HasPrefix(req.PreviousToken, "-") {
			runPhaseB(ctx, sc, req, cache, mode, exec, &out, &localFiles, &localCommon)
		}
		if localCommon {
			runPhaseC(ctx, sc, req, cache, mode, exec, &out, &localFiles)
		}

		if !localFiles {
			useFiles = false
		}
	}

	return out, useFiles
}

func applyResultMode(rm store.ResultMode, useFiles, useCommon *bool) {
	if rm&store.NoFiles != 0 {
		*useFiles = false
	}
	if rm&store.NoCommon != 0 {
		*useCommon = false
	}
}

func emitValueCandidates(ctx context.Context, exec collab.Executor, opt store.OptionEntry, value string, req Request, out *[]candidate.Candidate) {
	for _, word := range argspec.Evaluate(ctx, exec, opt.ArgSpec) {
		m := matchkind.Evaluate(value, word, req.Fuzzy)
		if !matchkind.IsMatch(m) {
			continue
		}
		text, flags := matchkind.SuffixOrReplace(value, word, m)
		flags |= candidate.WithAutoSpace
		desc := ""
		if req.Descriptions {
			desc = opt.Desc
		}
		*out = append(*out, candidate.New(text, desc, m, flags))
	}
}

// runPhaseA handles an option value attached directly to the current
// token: "-bVALUE" or "--long=VALUE" (spec §4.3.A).
func runPhaseA(ctx context.Context, sc store.Snapshot, req Request, cache *condition.Cache, mode condition.Mode, exec collab.Executor, out *[]candidate.Candidate, useFiles, useCommon *bool) {
	current := req.CurrentToken
	for _, opt := range sc.Options {
		var value string
		matched := false

		if opt.HasShort() && len(current) >= 2 && current[1] == opt.ShortOpt {
			value = current[2:]
			matched = true
		} else if opt.HasLong() && !opt.OldMode {
			prefix := "--" + opt.LongOpt + "="
			if strings.HasPrefix(current, prefix) {
				value = current[len(prefix):]
				matched = true
			}
		}
		if !matched {
			continue
		}
		if !cache.Test(ctx, opt.Condition, mode) {
			continue
		}
		applyResultMode(opt.ResultMode, useFiles, useCommon)
		emitValueCandidates(ctx, exec, opt, value, req, out)
	}
}

// runPhaseB handles a switch fully typed in the previous token, now
// expecting its value in the current token (spec §4.3.B).
func runPhaseB(ctx context.Context, sc store.Snapshot, req Request, cache *condition.Cache, mode condition.Mode, exec collab.Executor, out *[]candidate.Candidate, useFiles, useCommon *bool) {
	previous := req.PreviousToken

	oldStyleMatched := false
	for _, opt := range sc.Options {
		if !opt.OldMode || !opt.HasLong() {
			continue
		}
		if previous != "-"+opt.LongOpt {
			continue
		}
		if cache.Test(ctx, opt.Condition, mode) {
			applyResultMode(opt.ResultMode, useFiles, useCommon)
			emitValueCandidates(ctx, exec, opt, req.CurrentToken, req, out)
		}
		oldStyleMatched = true
		break
	}
	if oldStyleMatched {
		return
	}

	for _, opt := range sc.Options {
		matched := false
		if opt.HasShort() && len(previous) >= 2 && previous[1] == opt.ShortOpt {
			matched = true
		} else if opt.HasLong() && !opt.OldMode && !opt.AcceptsOptionalValue() && previous == "--"+opt.LongOpt {
			matched = true
		}
		if !matched {
			continue
		}
		if !cache.Test(ctx, opt.Condition, mode) {
			continue
		}
		applyResultMode(opt.ResultMode, useFiles, useCommon)
		emitValueCandidates(ctx, exec, opt, req.CurrentToken, req, out)
	}
}

// runPhaseC is the always-run common pass: positional arg_spec values, and
// switch-name completion for the current token (spec §4.3.C).
func runPhaseC(ctx context.Context, sc store.Snapshot, req Request, cache *condition.Cache, mode condition.Mode, exec collab.Executor, out *[]candidate.Candidate, useFiles *bool) {
	current := req.CurrentToken

	for _, opt := range sc.Options {
		if opt.IsPositional() {
			*useFiles = false
			if cache.Test(ctx, opt.Condition, mode) {
				emitValueCandidates(ctx, exec, opt, current, req, out)
			}
			continue
		}

		if !req.UseSwitches || current == "" {
			continue
		}

		if opt.HasShort() && shortOK(current, opt.ShortOpt, sc.ShortOptStr) {
			*out = append(*out, candidate.New(string(opt.ShortOpt), descOf(opt, req), candidate.Match{Kind: candidate.MatchPrefix}, candidate.WithAutoSpace))
		}

		if opt.HasLong() {
			prefixChar := "--"
			if opt.OldMode {
				prefixChar = "-"
			}
			whole := prefixChar + opt.LongOpt
			m := matchkind.Evaluate(current, whole, false)
			if !matchkind.IsMatch(m) {
				continue
			}
			offset, flags := 0, candidate.ReplacesToken
			if !matchkind.RequiresFullReplace(m.Kind) {
				offset, flags = len(current), 0
			}
			flags |= candidate.WithAutoSpace
			if opt.AcceptsOptionalValue() {
				*out = append(*out, candidate.New((whole+"=")[offset:], descOf(opt, req), m, flags))
				*out = append(*out, candidate.New(whole[offset:], descOf(opt, req), m, flags))
			} else {
				*out = append(*out, candidate.New(whole[offset:], descOf(opt, req), m, flags))
			}
		}
	}
}

func descOf(opt store.OptionEntry, req Request) string {
	if !req.Descriptions {
		return ""
	}
	return opt.Desc
}

// shortOK reports whether the short option letter can be validly appended
// to the dash-bundle arg, per spec §4.3's short_ok definition.
func shortOK(arg string, next byte, allopt string) bool {
	if arg == "" {
		return true
	}
	if arg[0] != '-' || (len(arg) >= 2 && arg[1] == '-') {
		return false
	}
	if strings.IndexByte(arg, next) >= 0 {
		return false
	}
	for i := 1; i < len(arg); i++ {
		c := arg[i]
		idx := strings.IndexByte(allopt, c)
		if idx < 0 {
			return false
		}
		if idx+1 < len(allopt) && allopt[idx+1] == ':' {
			return false
		}
	}
	return true
}
