package complete

import (
	"context"
	"strings"
	"testing"

	"github.com/shellkit/complete/internal/cmdline"
	"github.com/shellkit/complete/internal/collab"
)

type fakeEnv struct{ names []string }

func (f fakeEnv) Get(string) (string, bool) { return "", false }
func (f fakeEnv) Names() []string           { return f.names }

type fakeExpander struct{ results []collab.ExpandResult }

func (f fakeExpander) Expand(string, collab.ExpandFlags) ([]collab.ExpandResult, error) {
	return f.results, nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(string) string { return "" }
func (fakeResolver) PathDirs() []string    { return nil }

type fakeRegistry struct{}

func (fakeRegistry) FunctionNames() []string           { return nil }
func (fakeRegistry) FunctionDescription(string) string { return "" }
func (fakeRegistry) BuiltinNames() []string            { return nil }
func (fakeRegistry) BuiltinDescription(string) string  { return "" }

type fakeExec struct{}

func (fakeExec) RunCondition(context.Context, string) (bool, error)           { return true, nil }
func (fakeExec) RunArgSpec(context.Context, string) ([]string, error)         { return nil, nil }
func (fakeExec) RunDescriptionScript(context.Context, string) (string, error) { return "", nil }

func newTestEngine() *Engine {
	return New(Options{
		Parser:   cmdline.New(),
		EnvStore: fakeEnv{names: []string{"HOME"}},
		Registry: fakeRegistry{},
		Resolver: fakeResolver{},
		Expander: fakeExpander{},
		Executor: fakeExec{},
	})
}

func TestCompleteReturnsCandidatesFromAddedSchema(t *testing.T) {
	e := newTestEngine()
	e.Add("git", false, OptionEntry{ShortOpt: 'b', LongOpt: "branch", ResultMode: NoCommon, ArgSpec: "master develop"})

	out := e.Complete(context.Background(), "git --branch=m", 14, Flags{})
	found := false
	for _, c := range out {
		if c.Text == "aster" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected switch-value completion, got %+v", out)
	}
}

func TestIsValidOptionAuthoritativeRejection(t *testing.T) {
	e := newTestEngine()
	e.SetAuthoritative("foo", false, true)

	ok, errs := e.IsValidOption(context.Background(), "foo", "-x", false, false)
	if ok {
		t.Fatal("expected rejection for an undeclared option on an authoritative schema")
	}
	if len(errs) == 0 || !strings.HasPrefix(errs[0], "Unknown option: ") {
		t.Fatalf("expected an Unknown option error, got %v", errs)
	}
}

func TestIsValidOptionCantSayWithoutAuthoritative(t *testing.T) {
	e := newTestEngine()
	e.Add("foo", false, OptionEntry{ShortOpt: 'y'})

	ok, errs := e.IsValidOption(context.Background(), "foo", "-x", false, false)
	if !ok || len(errs) != 0 {
		t.Fatalf("expected can't-say true with no errors, got ok=%v errs=%v", ok, errs)
	}
}

func TestIsValidOptionStrictAuthoritativeKnob(t *testing.T) {
	e := newTestEngine()
	e.Add("foo", false, OptionEntry{ShortOpt: 'y'})

	ok, _ := e.IsValidOption(context.Background(), "foo", "-x", true, false)
	if ok {
		t.Fatal("strictAuthoritative should turn can't-say into a hard false")
	}
}

func TestPrintRoundTripsThroughAdd(t *testing.T) {
	e := newTestEngine()
	e.Add("git", false, OptionEntry{ShortOpt: 'v', LongOpt: "verbose", Desc: "be noisy"})

	var b strings.Builder
	if err := e.Print(&b); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(b.String(), "--command 'git'") {
		t.Fatalf("expected git schema in printed output, got %q", b.String())
	}
}

func TestSetVariableNamesOverridesEnvironment(t *testing.T) {
	e := newTestEngine()
	e.SetVariableNames([]string{"CUSTOM_VAR"})

	out := e.Complete(context.Background(), "echo $CUSTOM_", 13, Flags{})
	found := false
	for _, c := range out {
		if c.Text == "VAR" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected overridden variable name to surface, got %+v", out)
	}

	e.SetVariableNames(nil)
	out = e.Complete(context.Background(), "echo $CUSTOM_", 13, Flags{})
	for _, c := range out {
		if c.Text == "VAR" {
			t.Fatalf("expected override cleared after SetVariableNames(nil), got %+v", out)
		}
	}
}
