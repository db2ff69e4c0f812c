package cmdline

import (
	"testing"

	"github.com/shellkit/complete/internal/collab"
)

func TestInnermostCommandSubstitutionSimple(t *testing.T) {
	p := New()
	line := `echo $(cat fo)`
	span, ok := p.InnermostCommandSubstitution(line, 12)
	if !ok {
		t.Fatal("expected a match")
	}
	if line[span.Begin:span.End] != "cat fo" {
		t.Fatalf("got %q", line[span.Begin:span.End])
	}
}

func TestInnermostCommandSubstitutionNested(t *testing.T) {
	p := New()
	line := `echo $(cat $(ls f))`
	span, ok := p.InnermostCommandSubstitution(line, 17)
	if !ok {
		t.Fatal("expected a match")
	}
	if line[span.Begin:span.End] != "ls f" {
		t.Fatalf("got %q", line[span.Begin:span.End])
	}
}

func TestInnermostCommandSubstitutionOutsideCursor(t *testing.T) {
	p := New()
	line := `echo $(cat fo) bar`
	_, ok := p.InnermostCommandSubstitution(line, 16)
	if ok {
		t.Fatal("expected no match past the substitution")
	}
}

func TestPlainStatementAtSimple(t *testing.T) {
	p := New()
	line := "git commit -m foo"
	stmt, ok := p.PlainStatementAt(line, 10)
	if !ok {
		t.Fatal("expected a plain statement")
	}
	if line[stmt.CommandWord.Begin:stmt.CommandWord.End] != "git" {
		t.Fatalf("got command word %q", line[stmt.CommandWord.Begin:stmt.CommandWord.End])
	}
	if len(stmt.Args) != 3 {
		t.Fatalf("want 3 args, got %d", len(stmt.Args))
	}
}

func TestPlainStatementAtDecorationCommand(t *testing.T) {
	p := New()
	line := "command ls -la"
	stmt, ok := p.PlainStatementAt(line, 9)
	if !ok {
		t.Fatal("expected a plain statement")
	}
	if stmt.Decoration != collab.DecorationExec {
		t.Fatalf("got decoration %v", stmt.Decoration)
	}
	if line[stmt.CommandWord.Begin:stmt.CommandWord.End] != "ls" {
		t.Fatalf("got command word %q", line[stmt.CommandWord.Begin:stmt.CommandWord.End])
	}
}

func TestPlainStatementAtSplitsOnSemicolon(t *testing.T) {
	p := New()
	line := "ls; git status"
	stmt, ok := p.PlainStatementAt(line, 8)
	if !ok {
		t.Fatal("expected a plain statement")
	}
	if line[stmt.CommandWord.Begin:stmt.CommandWord.End] != "git" {
		t.Fatalf("got command word %q", line[stmt.CommandWord.Begin:stmt.CommandWord.End])
	}
}

func TestPlainStatementAtHadDoubleDash(t *testing.T) {
	p := New()
	line := "grep -- -foo bar"
	stmt, ok := p.PlainStatementAt(line, len(line))
	if !ok {
		t.Fatal("expected a plain statement")
	}
	if !stmt.HadDoubleDash {
		t.Fatal("expected HadDoubleDash to be true")
	}
}
