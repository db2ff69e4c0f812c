package varcomplete

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shellkit/complete/internal/collab"
)

type fakePasswordDB struct {
	entries []collab.PasswordEntry
	err     error
	delay   time.Duration
}

func (f fakePasswordDB) Entries() ([]collab.PasswordEntry, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.entries, f.err
}

func TestUserCompletesAgainstPasswordDB(t *testing.T) {
	db := fakePasswordDB{entries: []collab.PasswordEntry{{Name: "root", Home: "/root"}, {Name: "rose", Home: "/home/rose"}}}
	out := User(context.Background(), "~ro", db, false)
	found := map[string]bool{}
	for _, c := range out {
		found[c.Text] = true
	}
	if !found["ot"] || !found["se"] {
		t.Fatalf("expected suffix completions ot/se, got %+v", out)
	}
}

func TestUserReturnsNilWithoutTilde(t *testing.T) {
	db := fakePasswordDB{entries: []collab.PasswordEntry{{Name: "root"}}}
	if out := User(context.Background(), "roo", db, false); out != nil {
		t.Fatalf("expected nil without leading '~', got %+v", out)
	}
}

func TestUserReturnsNilOnDatabaseError(t *testing.T) {
	db := fakePasswordDB{err: errors.New("boom")}
	if out := User(context.Background(), "~r", db, false); out != nil {
		t.Fatalf("expected nil on database error, got %+v", out)
	}
}

func TestUserSelfTerminatesOnSlowDatabase(t *testing.T) {
	db := fakePasswordDB{delay: time.Second, entries: []collab.PasswordEntry{{Name: "root"}}}
	start := time.Now()
	out := User(context.Background(), "~r", db, false)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("expected self-termination well under 500ms, took %v", elapsed)
	}
	if out != nil {
		t.Fatalf("expected nil when the lookup times out, got %+v", out)
	}
}
