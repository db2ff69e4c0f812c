// Package argspec evaluates an option's arg_spec source fragment into a
// list of candidate words. Most arg_spec strings in practice are a literal
// space-separated list ("master develop main"); those are split directly
// with shlex rather than paying for a subshell fork. Anything containing
// shell metacharacters falls back to the real subshell bridge.
package argspec

import (
	"context"
	"strings"

	"github.com/google/shlex"

	"github.com/shellkit/complete/internal/collab"
)

const metacharacters = "$`(){}|&;<>*?[]~\n"

// Evaluate returns the words arg_spec produces. An empty arg_spec yields no
// words. Subshell failures are swallowed per spec §7 ("expansion failure...
// never raises; the session continues").
func Evaluate(ctx context.Context, exec collab.Executor, src string) []string {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	if words, ok := literal(src); ok {
		return words
	}
	words, err := exec.RunArgSpec(ctx, src)
	if err != nil {
		return nil
	}
	return words
}

func literal(src string) ([]string, bool) {
	if strings.ContainsAny(src, metacharacters) {
		return nil, false
	}
	words, err := shlex.Split(src)
	if err != nil {
		return nil, false
	}
	return words, true
}
