// Package printer implements complete_print (spec §4.8): serializing the
// store as a sequence of round-trippable "complete ..." lines, and parsing
// those lines back into store entries.
package printer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"

	"github.com/shellkit/complete/internal/store"
)

// Print writes one line per option across every schema in schemas, sorted
// by schema order with each schema's own option-list order (insertion
// order, newest first) preserved (spec §4.8). Callers pass store.ByOrder's
// result.
func Print(w io.Writer, schemas []store.Snapshot) error {
	for _, sc := range schemas {
		for _, opt := range sc.Options {
			if _, err := fmt.Fprintln(w, formatLine(sc, opt)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatLine(sc store.Snapshot, opt store.OptionEntry) string {
	var b strings.Builder
	b.WriteString("complete")

	switch {
	case opt.ResultMode == store.Exclusive:
		b.WriteString(" --exclusive")
	case opt.ResultMode&store.NoFiles != 0:
		b.WriteString(" --no-files")
		if opt.ResultMode&store.NoCommon != 0 {
			b.WriteString(" --require-parameter")
		}
	case opt.ResultMode&store.NoCommon != 0:
		b.WriteString(" --require-parameter")
	}

	if sc.CmdIsPath {
		b.WriteString(" --path ")
	} else {
		b.WriteString(" --command ")
	}
	b.WriteString(quote(sc.Cmd))

	if opt.HasShort() {
		fmt.Fprintf(&b, " --short-option %s", quote(string(opt.ShortOpt)))
	}
	if opt.HasLong() {
		flag := "--long-option"
		if opt.OldMode {
			flag = "--old-option"
		}
		fmt.Fprintf(&b, " %s %s", flag, quote(opt.LongOpt))
	}
	if opt.Desc != "" {
		fmt.Fprintf(&b, " --description %s", quote(opt.Desc))
	}
	if opt.ArgSpec != "" {
		fmt.Fprintf(&b, " --arguments %s", quote(opt.ArgSpec))
	}
	if opt.Condition != "" {
		fmt.Fprintf(&b, " --condition %s", quote(opt.Condition))
	}
	return b.String()
}

// quote wraps s in POSIX single quotes, escaping embedded quotes with the
// standard close-escape-reopen sequence so the result round-trips through
// any POSIX-compliant tokenizer, including Parse below.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Parse reads complete_print's output from r and replays every line into
// st via st.Add, reconstructing an equivalent option multiset per schema
// (spec §8, "Round-trip").
func Parse(r io.Reader, st *store.Store) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := parseLine(line, st); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseLine(line string, st *store.Store) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("printer: %w", err)
	}
	if len(tokens) == 0 || tokens[0] != "complete" {
		return fmt.Errorf("printer: not a complete line: %q", line)
	}

	var opt store.OptionEntry
	var cmd string
	var cmdIsPath, haveCmd bool

	i := 1
	for i < len(tokens) {
		tok := tokens[i]
		switch tok {
		case "--exclusive":
			opt.ResultMode = store.Exclusive
			i++
		case "--no-files":
			opt.ResultMode |= store.NoFiles
			i++
		case "--require-parameter":
			opt.ResultMode |= store.NoCommon
			i++
		case "--path", "--command":
			cmdIsPath = tok == "--path"
			i++
			if i >= len(tokens) {
				return fmt.Errorf("printer: missing value after %s", tok)
			}
			cmd, haveCmd = tokens[i], true
			i++
		case "--short-option":
			i++
			if i >= len(tokens) {
				return fmt.Errorf("printer: missing value after --short-option")
			}
			if tokens[i] != "" {
				opt.ShortOpt = tokens[i][0]
			}
			i++
		case "--long-option", "--old-option":
			opt.OldMode = tok == "--old-option"
			i++
			if i >= len(tokens) {
				return fmt.Errorf("printer: missing value after %s", tok)
			}
			opt.LongOpt = tokens[i]
			i++
		case "--description":
			i++
			if i >= len(tokens) {
				return fmt.Errorf("printer: missing value after --description")
			}
			opt.Desc = tokens[i]
			i++
		case "--arguments":
			i++
			if i >= len(tokens) {
				return fmt.Errorf("printer: missing value after --arguments")
			}
			opt.ArgSpec = tokens[i]
			i++
		case "--condition":
			i++
			if i >= len(tokens) {
				return fmt.Errorf("printer: missing value after --condition")
			}
			opt.Condition = tokens[i]
			i++
		default:
			return fmt.Errorf("printer: unrecognized token %q in line %q", tok, line)
		}
	}
	if !haveCmd {
		return fmt.Errorf("printer: line missing --path/--command: %q", line)
	}

	st.Add(cmd, cmdIsPath, opt)
	return nil
}
