package shellhost

import (
	"bytes"
	"context"
	"strings"
	"time"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/shellkit/complete/internal/collab"
)

// Executor is the default collab.Executor: it parses source fragments with
// mvdan.cc/sh/v3/syntax and runs them with mvdan.cc/sh/v3/interp, the same
// pair the teacher used for shell interpretation. Each call gets a fresh
// Runner, so one condition script's variable assignments never leak into
// the next.
type Executor struct {
	// Timeout bounds every subshell invocation; zero means no bound.
	Timeout time.Duration
}

// NewExecutor returns an Executor with the given per-call timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{Timeout: timeout}
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.Timeout)
}

func (e *Executor) parse(src string) (*syntax.File, error) {
	return syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(src), "")
}

// RunCondition implements collab.Executor.
func (e *Executor) RunCondition(ctx context.Context, src string) (bool, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	file, err := e.parse(src)
	if err != nil {
		return false, err
	}

	var discard bytes.Buffer
	runner, err := interp.New(interp.StdIO(nil, &discard, &discard))
	if err != nil {
		return false, err
	}

	err = runner.Run(ctx, file)
	if err == nil {
		return true, nil
	}
	if status, ok := interp.IsExitStatus(err); ok {
		return status == 0, nil
	}
	return false, err
}

// RunArgSpec implements collab.Executor. arg_spec output is line-oriented:
// each non-empty output line becomes one candidate word.
func (e *Executor) RunArgSpec(ctx context.Context, src string) ([]string, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	file, err := e.parse(src)
	if err != nil {
		return nil, err
	}

	var out, errBuf bytes.Buffer
	runner, err := interp.New(interp.StdIO(nil, &out, &errBuf))
	if err != nil {
		return nil, err
	}

	if err := runner.Run(ctx, file); err != nil {
		if _, ok := interp.IsExitStatus(err); !ok {
			return nil, err
		}
	}

	var words []string
	for _, line := range strings.Split(out.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			words = append(words, line)
		}
	}
	return words, nil
}

// RunDescriptionScript implements collab.Executor, returning stdout trimmed
// of its trailing newline.
func (e *Executor) RunDescriptionScript(ctx context.Context, cmd string) (string, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	file, err := e.parse(cmd)
	if err != nil {
		return "", err
	}

	var out, errBuf bytes.Buffer
	runner, err := interp.New(interp.StdIO(nil, &out, &errBuf))
	if err != nil {
		return "", err
	}

	if err := runner.Run(ctx, file); err != nil {
		if _, ok := interp.IsExitStatus(err); !ok {
			return "", err
		}
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

var _ collab.Executor = (*Executor)(nil)
