package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tjorvi/jujutsuka/pkg/errors"
	"github.com/tjorvi/jujutsuka/pkg/pipeline"
	"github.com/tjorvi/jujutsuka/pkg/session"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
	"github.com/tjorvi/jujutsuka/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Sessions
// =============================================================================

type createSessionRequest struct {
	RepoPath string `json:"repo_path"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	sess, err := session.New(req.RepoPath, session.DefaultTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadSession resolves the session named in the URL, or writes the error.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

// =============================================================================
// Graph reads
// =============================================================================

// pipelineOptions assembles pipeline options from the session and the
// request's query parameters.
func (s *Server) pipelineOptions(sess *session.Session, r *http.Request, formats ...string) (pipeline.Options, error) {
	opts := pipeline.Options{
		RepoPath: sess.RepoPath,
		Revset:   r.URL.Query().Get("revset"),
		Formats:  formats,
		Theme:    r.URL.Query().Get("theme"),
		Logger:   s.logger,
	}
	if opts.Theme != "" {
		if err := pipeline.ValidateTheme(opts.Theme); err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "%v", err)
		}
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if r.URL.Query().Get("refresh") == "true" {
		opts.Refresh = true
	}
	if s.cfg.NewSource != nil {
		opts.Source = s.cfg.NewSource(sess)
	}
	return opts, nil
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	opts, err := s.pipelineOptions(sess, r, pipeline.FormatJSON)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner(sess).Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Graph-Hash", result.GraphHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	s.handleArtifact(w, r, pipeline.FormatDOT, "text/vnd.graphviz")
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	s.handleArtifact(w, r, pipeline.FormatSVG, "image/svg+xml")
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request, format, contentType string) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	opts, err := s.pipelineOptions(sess, r, format)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner(sess).Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	opts, err := s.pipelineOptions(sess, r, pipeline.FormatJSON)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner(sess).Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	snap := store.Snapshot{
		Hash:           result.GraphHash,
		RepoPath:       sess.RepoPath,
		CreatedAt:      time.Now().UTC(),
		Graph:          stackgraph.FromGraph(result.Graph),
		ParallelGroups: result.Layout.ParallelGroups,
	}
	if err := s.snaps.Save(r.Context(), snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"hash": snap.Hash})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	snaps, err := s.snaps.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snaps.Load(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// =============================================================================
// Engine pass-throughs
// =============================================================================

// engineFor builds the mutation engine for the session's repository.
func (s *Server) engineFor(sess *session.Session) (Engine, error) {
	return s.cfg.NewEngine(sess.RepoPath, s.logger)
}

type opRequest struct {
	Revision    string   `json:"revision,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Message     string   `json:"message,omitempty"`
	Name        string   `json:"name,omitempty"`
	Parents     []string `json:"parents,omitempty"`
}

// handleOp decodes the request, resolves the engine, and runs one mutation.
func (s *Server) handleOp(w http.ResponseWriter, r *http.Request, op func(Engine, opRequest) error) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var req opRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
			return
		}
	}

	engine, err := s.engineFor(sess)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := op(engine, req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRebase(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.Rebase(r.Context(), req.Revision, req.Destination)
	})
}

func (s *Server) handleSquash(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.Squash(r.Context(), req.Revision)
	})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.Describe(r.Context(), req.Revision, req.Message)
	})
}

func (s *Server) handleNewChange(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.NewChange(r.Context(), req.Parents...)
	})
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.Abandon(r.Context(), req.Revision)
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.Undo(r.Context())
	})
}

func (s *Server) handleSetBookmark(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.SetBookmark(r.Context(), req.Name, req.Revision)
	})
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	s.handleOp(w, r, func(e Engine, req opRequest) error {
		return e.DeleteBookmark(r.Context(), req.Name)
	})
}

// =============================================================================
// Response helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// writeError maps structured error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRevision,
		errors.ErrCodeInvalidRange, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound, errors.ErrCodeSnapshotNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeEngineUnavailable:
		status = http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case errors.ErrCodeEngine:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}
