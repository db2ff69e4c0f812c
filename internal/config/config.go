// Package config resolves the engine's on-disk configuration (spec §6
// "environment variables consumed", §4.7 autoload search path), grounded on
// the teacher's config.go: env var overrides an on-disk file, which
// overrides a built-in default, with TOML replacing the teacher's JSON
// since this config now describes a declarative schema bootstrap file
// rather than API credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/shellkit/complete/internal/store"
)

// Option is one option declaration inside a bootstrap schema (spec §3),
// expressed declaratively for TOML decoding rather than via complete_add's
// positional arguments.
type Option struct {
	ShortOpt  string `toml:"short_option"`
	LongOpt   string `toml:"long_option"`
	OldOption bool   `toml:"old_option"`
	ArgSpec   string `toml:"arguments"`
	Desc      string `toml:"description"`
	Condition string `toml:"condition"`
	NoFiles   bool   `toml:"no_files"`
	NoCommon  bool   `toml:"no_common"`
	Exclusive bool   `toml:"exclusive"`
}

// Schema is one command's bootstrap entry.
type Schema struct {
	Cmd           string   `toml:"command"`
	Path          string   `toml:"path"`
	Authoritative bool     `toml:"authoritative"`
	Options       []Option `toml:"option"`
}

// Config is the engine's bootstrap configuration.
type Config struct {
	// AutoloadSearchPathVar names the environment variable the autoloader
	// consults for its definition-file search path (spec §6: "the
	// search-path variable named by the autoloader"). Empty means fall
	// back to AutoloadDirs.
	AutoloadSearchPathVar string   `toml:"autoload_search_path_var"`
	AutoloadDirs          []string `toml:"autoload_dirs"`
	Schema                []Schema `toml:"schema"`
}

// ConfigDir resolves the configuration directory.
// Resolution order: $COMPLETE_CONFIG_DIR > $XDG_CONFIG_HOME/complete >
// ~/.config/complete.
func ConfigDir() string {
	if dir := os.Getenv("COMPLETE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, "complete")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "complete-config")
	}
	return filepath.Join(home, ".config", "complete")
}

// BootstrapPath returns the full path to the bootstrap schema file.
func BootstrapPath() string {
	return filepath.Join(ConfigDir(), "complete.toml")
}

// Default returns the built-in configuration used when no bootstrap file
// is present on disk: a couple of representative schemas (git, ls) so a
// freshly started daemon isn't empty.
func Default() *Config {
	return &Config{
		AutoloadSearchPathVar: "COMPLETE_FPATH",
		Schema: []Schema{
			{
				Cmd: "git",
				Options: []Option{
					{ShortOpt: "b", LongOpt: "branch", NoCommon: true, ArgSpec: "$(git branch --format='%(refname:short)')", Desc: "branch name"},
					{LongOpt: "help", Desc: "show help"},
				},
			},
			{
				Cmd: "ls",
				Options: []Option{
					{ShortOpt: "a", LongOpt: "all", Desc: "do not ignore entries starting with ."},
					{ShortOpt: "l", Desc: "use a long listing format"},
				},
			},
		},
	}
}

// Load resolves the bootstrap file from disk, falling back to Default if
// it does not exist.
func Load() (*Config, error) {
	path := BootstrapPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if cfg.AutoloadSearchPathVar == "" {
		cfg.AutoloadSearchPathVar = "COMPLETE_FPATH"
	}
	return &cfg, nil
}

// Apply registers every bootstrap schema into st via Add/SetAuthoritative,
// the same entry points a front-end's complete_add calls use.
func Apply(cfg *Config, st *store.Store) {
	for _, sc := range cfg.Schema {
		cmdIsPath := sc.Path != ""
		cmd := sc.Cmd
		if cmdIsPath {
			cmd = sc.Path
		}
		for _, opt := range sc.Options {
			entry := store.OptionEntry{
				LongOpt:   opt.LongOpt,
				OldMode:   opt.OldOption,
				ArgSpec:   opt.ArgSpec,
				Desc:      opt.Desc,
				Condition: opt.Condition,
			}
			if opt.ShortOpt != "" {
				entry.ShortOpt = opt.ShortOpt[0]
			}
			switch {
			case opt.Exclusive:
				entry.ResultMode = store.Exclusive
			default:
				if opt.NoFiles {
					entry.ResultMode |= store.NoFiles
				}
				if opt.NoCommon {
					entry.ResultMode |= store.NoCommon
				}
			}
			st.Add(cmd, cmdIsPath, entry)
		}
		if sc.Authoritative {
			st.SetAuthoritative(cmd, cmdIsPath, true)
		}
	}
}

// AutoloadDirs resolves the autoloader's search path: the environment
// variable named by cfg.AutoloadSearchPathVar, split on the OS path-list
// separator, or cfg.AutoloadDirs if that variable is unset.
func AutoloadDirs(cfg *Config) []string {
	if cfg.AutoloadSearchPathVar != "" {
		if raw, ok := os.LookupEnv(cfg.AutoloadSearchPathVar); ok {
			var dirs []string
			for _, d := range strings.Split(raw, string(os.PathListSeparator)) {
				if d != "" {
					dirs = append(dirs, d)
				}
			}
			if len(dirs) > 0 {
				return dirs
			}
		}
	}
	return cfg.AutoloadDirs
}
