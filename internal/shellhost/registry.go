// Package shellhost provides the default, real implementations of every
// internal/collab interface: environment access, function/builtin registries,
// PATH resolution, password-database enumeration, and subshell execution.
// pkg/complete wires these in outside of tests; tests substitute fakes.
package shellhost

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/shellkit/complete/internal/collab"
)

// builtinNames is the set of shell builtins mvdan.cc/sh/v3/interp recognizes,
// adapted from that package's own IsBuiltin name list.
var builtinNames = []string{
	":", "true", "false", "exit", "set", "shift", "unset",
	"echo", "printf", "break", "continue", "pwd", "cd",
	"wait", "builtin", "trap", "type", "source", ".", "command",
	"dirs", "pushd", "popd", "umask", "alias", "unalias",
	"fg", "bg", "getopts", "eval", "test", "[", "exec",
	"return", "read", "mapfile", "readarray", "shopt",
}

// Registry is the default collab.Registry: builtins come from the fixed
// mvdan.cc/sh/v3 list; functions come from a caller-populated table (a real
// interactive shell front-end would sync this from its own function table).
type Registry struct {
	mu          sync.RWMutex
	functions   map[string]string
	builtinDesc map[string]string
}

// NewRegistry returns a Registry seeded with terse default builtin
// descriptions.
func NewRegistry() *Registry {
	return &Registry{
		functions:   make(map[string]string),
		builtinDesc: defaultBuiltinDescriptions(),
	}
}

// SetFunction records or updates a shell function's description, called by
// the host application whenever its function table changes.
func (r *Registry) SetFunction(name, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[name] = description
}

// RemoveFunction drops name from the function table.
func (r *Registry) RemoveFunction(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.functions, name)
}

func (r *Registry) FunctionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for n := range r.functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) FunctionDescription(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.functions[name]
}

func (r *Registry) BuiltinNames() []string {
	out := make([]string, len(builtinNames))
	copy(out, builtinNames)
	sort.Strings(out)
	return out
}

func (r *Registry) BuiltinDescription(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtinDesc[name]
}

func defaultBuiltinDescriptions() map[string]string {
	return map[string]string{
		"cd": "change the current directory", "pwd": "print working directory",
		"echo": "write arguments to standard output", "exit": "exit the shell",
		"set": "set shell options and positional parameters", "unset": "unset a variable or function",
		"export": "mark a variable for export", "alias": "define or display aliases",
		"read": "read a line into variables", "test": "evaluate a conditional expression",
	}
}

var _ collab.Registry = (*Registry)(nil)

// EnvStore is the default collab.EnvStore, backed by the process environment.
type EnvStore struct{}

// NewEnvStore returns an EnvStore.
func NewEnvStore() EnvStore { return EnvStore{} }

func (EnvStore) Get(name string) (string, bool) { return os.LookupEnv(name) }

func (EnvStore) Names() []string {
	env := os.Environ()
	names := make([]string, 0, len(env))
	for _, kv := range env {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			names = append(names, kv[:idx])
		}
	}
	sort.Strings(names)
	return names
}

var _ collab.EnvStore = EnvStore{}
