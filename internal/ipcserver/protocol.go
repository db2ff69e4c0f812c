// Package ipcserver exposes the engine over a Unix domain socket, one
// newline-delimited JSON request/response pair per line, grounded on the
// teacher's `serve/server.go`: per-session in-flight-request cancellation,
// stale-socket cleanup, and a background-safe reload path.
package ipcserver

// Request is the envelope every client message decodes into. Op selects
// which fields apply and which of the engine's public operations to run;
// this collapses the teacher's multi-struct trial-unmarshal dispatch (a
// context probe, a config probe, then the request proper) into a single
// discriminated envelope, since every op here already belongs to one
// engine rather than several unrelated subsystems.
type Request struct {
	Op        string `json:"op"`
	SessionID string `json:"session_id,omitempty"`
	RequestID int    `json:"request_id,omitempty"`

	// complete
	Line         string `json:"line,omitempty"`
	Cursor       int    `json:"cursor,omitempty"`
	Descriptions bool   `json:"descriptions,omitempty"`
	FuzzyMatch   bool   `json:"fuzzy_match,omitempty"`
	Autosuggest  bool   `json:"autosuggest,omitempty"`

	// complete_add / complete_remove / complete_set_authoritative; Cmd
	// doubles as the full command line for complete_is_valid_option.
	Cmd           string `json:"cmd,omitempty"`
	CmdIsPath     bool   `json:"cmd_is_path,omitempty"`
	ShortOpt      string `json:"short_option,omitempty"`
	LongOpt       string `json:"long_option,omitempty"`
	OldOption     bool   `json:"old_option,omitempty"`
	NoFiles       bool   `json:"no_files,omitempty"`
	NoCommon      bool   `json:"no_common,omitempty"`
	Exclusive     bool   `json:"exclusive,omitempty"`
	Condition     string `json:"condition,omitempty"`
	ArgSpec       string `json:"arguments,omitempty"`
	Description   string `json:"description,omitempty"`
	Authoritative bool   `json:"authoritative,omitempty"`

	// complete_is_valid_option
	Opt                 string `json:"opt,omitempty"`
	StrictAuthoritative bool   `json:"strict_authoritative,omitempty"`
	AllowAutoload       bool   `json:"allow_autoload,omitempty"`

	// complete_load
	Name   string `json:"name,omitempty"`
	Reload bool   `json:"reload,omitempty"`
}

// CandidateJSON is the wire form of candidate.Candidate.
type CandidateJSON struct {
	Text          string `json:"text"`
	Description   string `json:"description,omitempty"`
	ReplacesToken bool   `json:"replaces_token"`
	NoSpace       bool   `json:"no_space"`
}

// ErrorInfo describes an op-level failure.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the envelope written back for every request.
type Response struct {
	RequestID int `json:"request_id,omitempty"`
	// SessionID is only set when the request omitted one: the server mints
	// a fresh id (github.com/google/uuid) and hands it back so the client
	// can reuse it on follow-up requests to get cancellation tracking.
	SessionID  string          `json:"session_id,omitempty"`
	Candidates []CandidateJSON `json:"candidates,omitempty"`
	Valid      *bool           `json:"valid,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	Printed    string          `json:"printed,omitempty"`
	Error      *ErrorInfo      `json:"error,omitempty"`
}
