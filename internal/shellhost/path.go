package shellhost

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shellkit/complete/internal/collab"
)

// PathResolver is the default collab.PathResolver, a PATH-order lookup with
// the same executable-bit test exec.LookPath applies, kept local instead of
// delegating to os/exec.LookPath so PathDirs can expose the search order the
// command completer also walks for its per-directory expansion.
type PathResolver struct {
	dirs []string
}

// NewPathResolver splits the PATH environment variable into its directory
// list, preserving order and dropping empty entries.
func NewPathResolver() *PathResolver {
	raw := os.Getenv("PATH")
	var dirs []string
	for _, d := range strings.Split(raw, string(os.PathListSeparator)) {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return &PathResolver{dirs: dirs}
}

func (p *PathResolver) PathDirs() []string {
	out := make([]string, len(p.dirs))
	copy(out, p.dirs)
	return out
}

// Resolve returns the first PATH directory entry for name that exists and
// carries at least one executable bit, or "" if none does.
func (p *PathResolver) Resolve(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) {
		if isExecutable(name) {
			return name
		}
		return ""
	}
	for _, dir := range p.dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

var _ collab.PathResolver = (*PathResolver)(nil)
