package shellhost

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPathResolverResolvesExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "mytool")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	r := NewPathResolver()
	if got := r.Resolve("mytool"); got != exe {
		t.Fatalf("got %q want %q", got, exe)
	}
}

func TestPathResolverRejectsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	f := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	r := NewPathResolver()
	if got := r.Resolve("data.txt"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
