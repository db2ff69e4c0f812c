package autoload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shellkit/complete/internal/printer"
	"github.com/shellkit/complete/internal/store"
)

// FileSource is the default Source: it searches a configurable list of
// directories (spec §4.7 "a configurable variable") for a file named after
// the command and, if found, parses it with the printer grammar (§4.8),
// registering whatever options it declares directly into the store.
//
// A definition file is just `complete_print` output someone wrote or
// generated by hand — sourcing it is replaying those lines through Parse.
type FileSource struct {
	SearchPath func() []string
	Store      *store.Store
}

// Load implements Source. version is the definition file's mtime, stable
// across stats as long as the file is untouched, so a reload only re-parses
// when the file actually changed.
func (f FileSource) Load(ctx context.Context, cmd string) (version string, found bool, err error) {
	for _, dir := range f.SearchPath() {
		path := filepath.Join(dir, cmd)
		info, statErr := os.Stat(path)
		if statErr != nil || info.IsDir() {
			continue
		}

		file, openErr := os.Open(path)
		if openErr != nil {
			continue
		}
		parseErr := printer.Parse(file, f.Store)
		file.Close()
		if parseErr != nil {
			return "", false, fmt.Errorf("autoload: parsing %s: %w", path, parseErr)
		}
		return info.ModTime().String(), true, nil
	}
	return "", false, nil
}
