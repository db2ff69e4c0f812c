package shellhost

import (
	"bufio"
	"os"
	"strings"

	"github.com/shellkit/complete/internal/collab"
)

// PasswordDB is the default collab.PasswordDB: a direct /etc/passwd reader,
// chosen over os/user's enumeration (which needs cgo on several platforms
// and offers no partial-result path). Entries reads the whole file; the
// 200ms completion budget is enforced by the caller, which stops waiting on
// Entries once the budget runs out.
type PasswordDB struct {
	path string
}

// NewPasswordDB returns a PasswordDB reading the standard passwd file.
func NewPasswordDB() *PasswordDB { return &PasswordDB{path: "/etc/passwd"} }

// Entries parses every colon-delimited line of the passwd file into a
// PasswordEntry. Malformed lines are skipped rather than treated as errors,
// since a single corrupt row must not prevent completion from using the
// rest of the database.
func (p *PasswordDB) Entries() ([]collab.PasswordEntry, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []collab.PasswordEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 6 {
			continue
		}
		out = append(out, collab.PasswordEntry{Name: fields[0], Home: fields[5]})
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}

var _ collab.PasswordDB = (*PasswordDB)(nil)
