package main

import (
	"io"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/shellkit/complete/internal/candidate"
)

type transcriptRequest struct {
	Timestamp string `toml:"timestamp"`
	Input     string `toml:"input"`
	Cursor    int    `toml:"cursor"`
}

type transcriptCandidate struct {
	Text          string `toml:"text"`
	Description   string `toml:"description,omitempty"`
	ReplacesToken bool   `toml:"replaces_token"`
	NoSpace       bool   `toml:"no_space"`
}

type transcriptEntry struct {
	Request    transcriptRequest     `toml:"request"`
	Candidates []transcriptCandidate `toml:"candidates"`
}

// writeTranscriptEntry appends one TOML-encoded entry for a single
// completion call, replacing the teacher's hand-rolled TOML string
// quoting (ashlet/repl/output.go) with a real encoder.
func writeTranscriptEntry(w io.Writer, input string, cursor int, cands []candidate.Candidate) error {
	entry := transcriptEntry{
		Request: transcriptRequest{
			Timestamp: time.Now().Format(time.RFC3339),
			Input:     input,
			Cursor:    cursor,
		},
	}
	for _, c := range cands {
		entry.Candidates = append(entry.Candidates, transcriptCandidate{
			Text:          c.Text,
			Description:   c.Description,
			ReplacesToken: c.Flags.Has(candidate.ReplacesToken),
			NoSpace:       c.Flags.Has(candidate.NoSpace),
		})
	}
	return toml.NewEncoder(w).Encode(entry)
}
