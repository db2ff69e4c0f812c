package completer

import (
	"context"
	"testing"

	"github.com/shellkit/complete/internal/collab"
)

type fakeExpander struct {
	results map[string][]collab.ExpandResult
}

func (f fakeExpander) Expand(token string, flags collab.ExpandFlags) ([]collab.ExpandResult, error) {
	return f.results[token], nil
}

type fakeResolver struct{ dirs []string }

func (f fakeResolver) Resolve(name string) string { return "" }
func (f fakeResolver) PathDirs() []string          { return f.dirs }

type fakeRegistry struct {
	functions map[string]string
	builtins  map[string]string
}

func (f fakeRegistry) FunctionNames() []string {
	names := make([]string, 0, len(f.functions))
	for n := range f.functions {
		names = append(names, n)
	}
	return names
}
func (f fakeRegistry) FunctionDescription(name string) string { return f.functions[name] }
func (f fakeRegistry) BuiltinNames() []string {
	names := make([]string, 0, len(f.builtins))
	for n := range f.builtins {
		names = append(names, n)
	}
	return names
}
func (f fakeRegistry) BuiltinDescription(name string) string { return f.builtins[name] }

type fakeExec struct {
	descLines string
}

func (f fakeExec) RunCondition(ctx context.Context, src string) (bool, error) { return true, nil }
func (f fakeExec) RunArgSpec(ctx context.Context, src string) ([]string, error) {
	return nil, nil
}
func (f fakeExec) RunDescriptionScript(ctx context.Context, cmd string) (string, error) {
	return f.descLines, nil
}

func TestCommandSearchesPathDirectories(t *testing.T) {
	expander := fakeExpander{results: map[string][]collab.ExpandResult{
		"/usr/bin/gi": {{Text: "/usr/bin/git", ReplacesToken: true}},
	}}
	resolver := fakeResolver{dirs: []string{"/usr/bin"}}
	registry := fakeRegistry{}
	out := Command(context.Background(), "gi", collab.DecorationNone, expander, resolver, registry, fakeExec{}, Options{})
	found := false
	for _, c := range out {
		if c.Text == "git" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected git candidate with PATH-dir prefix stripped, got %+v", out)
	}
}

func TestCommandBuiltinOnlyDecorationSkipsPathAndFunctions(t *testing.T) {
	expander := fakeExpander{}
	resolver := fakeResolver{dirs: []string{"/usr/bin"}}
	registry := fakeRegistry{
		functions: map[string]string{"echoFn": "a function"},
		builtins:  map[string]string{"echo": "print"},
	}
	out := Command(context.Background(), "ech", collab.DecorationBuiltin, expander, resolver, registry, fakeExec{}, Options{})
	for _, c := range out {
		if c.Text == "echoFn" {
			t.Fatalf("builtin decoration should not search functions, got %+v", out)
		}
	}
	if len(out) != 1 || out[0].Text != "echo" {
		t.Fatalf("expected only the builtin echo, got %+v", out)
	}
}

func TestCommandFiltersUnderscoreFunctionsUnlessTokenStartsWithUnderscore(t *testing.T) {
	registry := fakeRegistry{functions: map[string]string{"_private": "helper", "public": "fn"}}
	out := Command(context.Background(), "p", collab.DecorationNone, fakeExpander{}, fakeResolver{}, registry, fakeExec{}, Options{})
	for _, c := range out {
		if c.Text == "_private" {
			t.Fatalf("did not expect underscore-prefixed function without matching token prefix, got %+v", out)
		}
	}

	out = Command(context.Background(), "_p", collab.DecorationNone, fakeExpander{}, fakeResolver{}, registry, fakeExec{}, Options{})
	found := false
	for _, c := range out {
		if c.Text == "_private" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected underscore-prefixed function when token itself starts with underscore, got %+v", out)
	}
}

func TestApplyCommandDescriptionsSkipsShortToken(t *testing.T) {
	out := applyCommandDescriptions(context.Background(), fakeExec{descLines: "git\tversion control"}, "g", nil)
	if out != nil {
		t.Fatalf("expected nil passthrough for short token, got %+v", out)
	}
}

func TestApplyCommandDescriptionsSkipsWildcardToken(t *testing.T) {
	cands := Command(context.Background(), "gi*", collab.DecorationBuiltin, fakeExpander{}, fakeResolver{}, fakeRegistry{builtins: map[string]string{"git": ""}}, fakeExec{descLines: "git\tversion control"}, Options{Descriptions: true})
	for _, c := range cands {
		if c.Description == "Version control" {
			t.Fatalf("expected glob-wildcard token to skip description lookup, got %+v", cands)
		}
	}
}

func TestApplyCommandDescriptionsUppercasesAndPatches(t *testing.T) {
	registry := fakeRegistry{builtins: map[string]string{"git": ""}}
	out := applyCommandDescriptionsTestHelper(registry, "git\tversion control system")
	if len(out) != 1 || out[0].Description != "Version control system" {
		t.Fatalf("expected uppercased patched description, got %+v", out)
	}
}

func applyCommandDescriptionsTestHelper(registry fakeRegistry, descLines string) []candidateForTest {
	out := Command(context.Background(), "git", collab.DecorationNone, fakeExpander{}, fakeResolver{}, registry, fakeExec{descLines: descLines}, Options{Descriptions: true})
	result := make([]candidateForTest, len(out))
	for i, c := range out {
		result[i] = candidateForTest{Text: c.Text, Description: c.Description}
	}
	return result
}

type candidateForTest struct {
	Text        string
	Description string
}
