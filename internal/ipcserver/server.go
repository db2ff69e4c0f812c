package ipcserver

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shellkit/complete/internal/candidate"
	"github.com/shellkit/complete/internal/store"
	"github.com/shellkit/complete/pkg/complete"
)

// sessionEntry tracks a cancellable in-flight request for one session, so a
// new request on the same session cancels whatever that session still had
// running (spec §5: "callers discard results instead" of cooperating with
// an in-progress session).
type sessionEntry struct {
	requestID int
	cancel    context.CancelFunc
}

// Server listens on a Unix domain socket and dispatches each line to the
// engine.
type Server struct {
	listener net.Listener
	sockPath string
	engine   *complete.Engine

	mu       sync.Mutex
	sessions map[string]sessionEntry
}

// New binds a Server to sockPath, removing any stale socket file left
// behind by a previous, uncleanly terminated run.
func New(sockPath string, engine *complete.Engine) (*Server, error) {
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		sockPath: sockPath,
		engine:   engine,
		sessions: make(map[string]sessionEntry),
	}, nil
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close shuts down the listener and removes the socket file. The engine's
// own lifecycle is the caller's responsibility, since it may outlive this
// particular listener (e.g. across a socket rebind).
func (s *Server) Close() {
	s.listener.Close()
	os.Remove(s.sockPath)
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}
	raw := scanner.Bytes()
	slog.Debug("ipcserver: request", "data", string(raw))

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		slog.Warn("ipcserver: invalid request", "error", err)
		s.write(conn, Response{Error: &ErrorInfo{Code: "invalid_request", Message: err.Error()}})
		return
	}

	mintedSession := false
	sid, reqID := req.SessionID, req.RequestID
	if sid == "" {
		sid = uuid.NewString()
		mintedSession = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if prev, ok := s.sessions[sid]; ok {
		prev.cancel()
	}
	s.sessions[sid] = sessionEntry{requestID: reqID, cancel: cancel}
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		if cur, ok := s.sessions[sid]; ok && cur.requestID == reqID {
			delete(s.sessions, sid)
		}
		s.mu.Unlock()
	}()

	resp := s.dispatch(ctx, req)
	if ctx.Err() != nil {
		// A newer request on this session cancelled us; the client has
		// already moved on and isn't waiting for this response.
		return
	}
	resp.RequestID = reqID
	if mintedSession {
		resp.SessionID = sid
	}
	s.write(conn, resp)
}

func (s *Server) write(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("ipcserver: failed to marshal response", "error", err)
		return
	}
	slog.Debug("ipcserver: response", "data", string(data))
	conn.Write(append(data, '\n'))
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Op {
	case "complete":
		return s.handleComplete(ctx, req)
	case "complete_add":
		return s.handleAdd(req)
	case "complete_remove":
		return s.handleRemove(req)
	case "complete_set_authoritative":
		return s.handleSetAuthoritative(req)
	case "complete_is_valid_option":
		return s.handleIsValidOption(ctx, req)
	case "complete_print":
		return s.handlePrint()
	case "complete_load":
		return s.handleLoad(ctx, req)
	default:
		return Response{Error: &ErrorInfo{Code: "unknown_op", Message: "unknown op: " + req.Op}}
	}
}

func (s *Server) handleComplete(ctx context.Context, req Request) Response {
	cands := s.engine.Complete(ctx, req.Line, req.Cursor, complete.Flags{
		Descriptions: req.Descriptions,
		FuzzyMatch:   req.FuzzyMatch,
		Autosuggest:  req.Autosuggest,
	})
	return Response{Candidates: toCandidateJSON(cands)}
}

func toCandidateJSON(cands []candidate.Candidate) []CandidateJSON {
	out := make([]CandidateJSON, 0, len(cands))
	for _, c := range cands {
		out = append(out, CandidateJSON{
			Text:          c.Text,
			Description:   c.Description,
			ReplacesToken: c.Flags.Has(candidate.ReplacesToken),
			NoSpace:       c.Flags.Has(candidate.NoSpace),
		})
	}
	return out
}

func (s *Server) handleAdd(req Request) Response {
	entry := store.OptionEntry{
		LongOpt:   req.LongOpt,
		OldMode:   req.OldOption,
		ArgSpec:   req.ArgSpec,
		Desc:      req.Description,
		Condition: req.Condition,
	}
	if req.ShortOpt != "" {
		entry.ShortOpt = req.ShortOpt[0]
	}
	switch {
	case req.Exclusive:
		entry.ResultMode = store.Exclusive
	default:
		if req.NoFiles {
			entry.ResultMode |= store.NoFiles
		}
		if req.NoCommon {
			entry.ResultMode |= store.NoCommon
		}
	}
	s.engine.Add(req.Cmd, req.CmdIsPath, entry)
	return Response{}
}

func (s *Server) handleRemove(req Request) Response {
	var shortOpt byte
	if req.ShortOpt != "" {
		shortOpt = req.ShortOpt[0]
	}
	s.engine.Remove(req.Cmd, req.CmdIsPath, shortOpt, req.LongOpt)
	return Response{}
}

func (s *Server) handleSetAuthoritative(req Request) Response {
	s.engine.SetAuthoritative(req.Cmd, req.CmdIsPath, req.Authoritative)
	return Response{}
}

func (s *Server) handleIsValidOption(ctx context.Context, req Request) Response {
	ok, errs := s.engine.IsValidOption(ctx, req.Cmd, req.Opt, req.StrictAuthoritative, req.AllowAutoload)
	return Response{Valid: &ok, Errors: errs}
}

func (s *Server) handlePrint() Response {
	var b strings.Builder
	if err := s.engine.Print(&b); err != nil {
		return Response{Error: &ErrorInfo{Code: "print_error", Message: err.Error()}}
	}
	return Response{Printed: b.String()}
}

func (s *Server) handleLoad(ctx context.Context, req Request) Response {
	s.engine.Load(ctx, req.Name, req.Reload)
	return Response{}
}
