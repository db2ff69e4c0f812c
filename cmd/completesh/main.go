// Command completesh is an interactive test REPL for the completion
// engine. It reads a line with cursor tracking in raw mode, runs the
// engine in-process, and prints candidates plus a TOML transcript of every
// call — useful for exercising the driver steps end to end without a real
// shell front-end.
//
// Usage:
//
//	./completesh             # interactive, TOML on screen
//	./completesh > log.toml  # prompt on screen, TOML to file
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/shellkit/complete/internal/cmdline"
	"github.com/shellkit/complete/internal/config"
	"github.com/shellkit/complete/internal/shellhost"
	"github.com/shellkit/complete/pkg/complete"
)

const prompt = "> "

func main() {
	editor, err := openLineEditor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer editor.Close()

	tty := editor.Tty()

	fmt.Fprint(tty, "\x1b[2J\x1b[H")
	fmt.Fprint(tty, "completesh\r\n\r\n")
	fmt.Fprint(tty, "commands:\r\n")
	fmt.Fprint(tty, "  :descriptions  toggle description lookup\r\n")
	fmt.Fprint(tty, "  :fuzzy         toggle fuzzy matching\r\n")
	fmt.Fprint(tty, "  :autosuggest   toggle autosuggest mode\r\n")
	fmt.Fprint(tty, "  :quit          exit\r\n\r\n")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(tty, "error loading config: %v\r\n", err)
		os.Exit(1)
	}

	resolver := shellhost.NewPathResolver()
	engine := complete.New(complete.Options{
		Parser:   cmdline.New(),
		EnvStore: shellhost.NewEnvStore(),
		Passwd:   shellhost.NewPasswordDB(),
		Registry: shellhost.NewRegistry(),
		Resolver: resolver,
		Expander: shellhost.NewExpander(resolver),
		Executor: shellhost.NewExecutor(0),
	})
	defer engine.Close()
	config.Apply(cfg, engine.Store())

	out := termWriter(os.Stdout)
	flags := complete.Flags{Descriptions: true}

	for {
		text, cursor, err := editor.ReadLine(prompt)
		if err == io.EOF || err == ErrInterrupt {
			break
		}
		if err != nil {
			fmt.Fprintf(tty, "read error: %v\r\n", err)
			break
		}
		if text == "" {
			continue
		}

		switch text {
		case ":quit", ":q":
			return
		case ":descriptions":
			flags.Descriptions = !flags.Descriptions
			fmt.Fprintf(tty, "descriptions: %v\r\n\r\n", flags.Descriptions)
			continue
		case ":fuzzy":
			flags.FuzzyMatch = !flags.FuzzyMatch
			fmt.Fprintf(tty, "fuzzy: %v\r\n\r\n", flags.FuzzyMatch)
			continue
		case ":autosuggest":
			flags.Autosuggest = !flags.Autosuggest
			fmt.Fprintf(tty, "autosuggest: %v\r\n\r\n", flags.Autosuggest)
			continue
		}
		if strings.HasPrefix(text, ":") {
			fmt.Fprintf(tty, "unknown command: %s\r\n\r\n", text)
			continue
		}

		cands := engine.Complete(context.Background(), text, cursor, flags)

		if len(cands) == 0 {
			fmt.Fprint(tty, "(no candidates)\r\n")
		}
		for i, c := range cands {
			fmt.Fprintf(tty, "  %d. %q", i+1, c.Text)
			if c.Description != "" {
				fmt.Fprintf(tty, " — %s", c.Description)
			}
			fmt.Fprint(tty, "\r\n")
		}
		fmt.Fprint(tty, "\r\n")

		if err := writeTranscriptEntry(out, text, cursor, cands); err != nil {
			fmt.Fprintf(tty, "transcript error: %v\r\n", err)
		}
	}
}

// termWriter converts \n to \r\n when stdout is a terminal (raw mode
// disables the kernel's NL→CRNL translation); when redirected to a file
// it passes \n through unchanged.
func termWriter(f *os.File) io.Writer {
	if term.IsTerminal(int(f.Fd())) {
		return &crlfWriter{w: f}
	}
	return f
}

type crlfWriter struct{ w io.Writer }

func (c *crlfWriter) Write(p []byte) (int, error) {
	converted := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := c.w.Write([]byte(converted)); err != nil {
		return 0, err
	}
	return len(p), nil
}
