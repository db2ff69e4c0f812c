package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shellkit/complete/internal/store"
)

func TestConfigDirPrefersEnvVar(t *testing.T) {
	t.Setenv("COMPLETE_CONFIG_DIR", "/tmp/custom-complete")
	if got := ConfigDir(); got != "/tmp/custom-complete" {
		t.Fatalf("ConfigDir() = %q, want /tmp/custom-complete", got)
	}
}

func TestConfigDirFallsBackToXDG(t *testing.T) {
	t.Setenv("COMPLETE_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg", "complete") {
		t.Fatalf("ConfigDir() = %q", got)
	}
}

func TestLoadFallsBackToDefaultWhenFileMissing(t *testing.T) {
	t.Setenv("COMPLETE_CONFIG_DIR", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Schema) == 0 {
		t.Fatal("expected built-in schemas from Default()")
	}
}

func TestLoadDecodesBootstrapFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COMPLETE_CONFIG_DIR", dir)
	toml := `
autoload_search_path_var = "MY_FPATH"

[[schema]]
command = "frobnicate"

[[schema.option]]
short_option = "v"
description = "be verbose"
`
	if err := os.WriteFile(filepath.Join(dir, "complete.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AutoloadSearchPathVar != "MY_FPATH" {
		t.Fatalf("AutoloadSearchPathVar = %q", cfg.AutoloadSearchPathVar)
	}
	if len(cfg.Schema) != 1 || cfg.Schema[0].Cmd != "frobnicate" {
		t.Fatalf("Schema = %+v", cfg.Schema)
	}
}

func TestApplyRegistersSchemasIntoStore(t *testing.T) {
	cfg := Default()
	st := store.New()
	Apply(cfg, st)

	schemas := st.FindMatching("git", "")
	if len(schemas) != 1 {
		t.Fatalf("expected one git schema, got %d", len(schemas))
	}
	if ok, _ := store.ValidateOption(schemas, "--branch", false); !ok {
		t.Fatal("expected --branch to be declared by the built-in git schema")
	}
}

func TestAutoloadDirsPrefersEnvVar(t *testing.T) {
	cfg := &Config{AutoloadSearchPathVar: "MY_FPATH", AutoloadDirs: []string{"/fallback"}}
	t.Setenv("MY_FPATH", "/a"+string(os.PathListSeparator)+"/b")
	dirs := AutoloadDirs(cfg)
	if len(dirs) != 2 || dirs[0] != "/a" || dirs[1] != "/b" {
		t.Fatalf("AutoloadDirs = %v", dirs)
	}
}

func TestAutoloadDirsFallsBackWhenVarUnset(t *testing.T) {
	cfg := &Config{AutoloadSearchPathVar: "UNSET_FPATH_VAR", AutoloadDirs: []string{"/fallback"}}
	dirs := AutoloadDirs(cfg)
	if len(dirs) != 1 || dirs[0] != "/fallback" {
		t.Fatalf("AutoloadDirs = %v", dirs)
	}
}
