package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/solutionmap/pkg/buildinfo"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/pipeline"
	"github.com/matzehuels/solutionmap/pkg/render/sink"
	"github.com/matzehuels/solutionmap/pkg/session"
)

// maxBody bounds request bodies.
const maxBody = 64 << 10

type errorBody struct {
	Error   errs.Code `json:"error"`
	Message string    `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.opts.Logger.Debug("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: code, Message: errs.UserMessage(err)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a non-negative number", name)
	}
	return v, nil
}

// =============================================================================
// Static
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.opts.Sessions.Len()})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	b, err := s.Tree(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(b.Hash))
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	b, err := s.Reload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"hash": b.Hash, "report": b.Report})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := sink.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		View:     chi.URLParam(r, "view"),
		Formats:  []string{string(format)},
		Clicks:   q["click"],
		Live:     q.Get("live") == "true",
		Detailed: q.Get("detailed") == "true",
		Config:   s.opts.Config,
		Logger:   s.opts.Logger,
	}
	if opts.Width, err = queryFloat(r, "width"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Height, err = queryFloat(r, "height"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Scale, err = queryFloat(r, "scale"); err != nil {
		s.writeError(w, r, err)
		return
	}

	b, err := s.Tree(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, hit, err := s.opts.Runner.RenderWithCacheInfo(r.Context(), b.Tree, b.Hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Cache", map[bool]string{true: "hit", false: "miss"}[hit])
	_, _ = w.Write(artifacts[string(format)])
}

// =============================================================================
// Sessions
// =============================================================================

type createRequest struct {
	View   string  `json:"view"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type sessionResponse struct {
	ID      string         `json:"id"`
	Outcome string         `json:"outcome,omitempty"`
	Busy    bool           `json:"busy"`
	Frame   frame.Envelope `json:"frame"`
}

func (s *Server) respond(w http.ResponseWriter, status int, sess *session.Session, outcome string) {
	s.writeJSON(w, status, sessionResponse{
		ID:      sess.ID,
		Outcome: outcome,
		Busy:    sess.Busy(),
		Frame:   frame.Envelope{View: sess.View, Frame: sess.Frame()},
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.View == "" {
		req.View = pipeline.DefaultView
	}
	view, err := frame.ParseView(req.View)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Width < 0 || req.Height < 0 {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "width and height must not be negative"))
		return
	}
	b, err := s.Tree(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.opts.Sessions.Create(r.Context(), b.Tree, view, pipeline.ViewParams{
		Config: s.opts.Config,
		Width:  req.Width,
		Height: req.Height,
		Logger: s.opts.Logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/diagrams/"+sess.ID)
	s.respond(w, http.StatusCreated, sess, "")
}

// session resolves the {id} parameter, writing the error when it fails.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateNodeRef(id); err != nil {
		s.writeError(w, r, errs.New(errs.ErrCodeSessionNotFound, "no session %q", id))
		return nil, false
	}
	sess, err := s.opts.Sessions.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, err := sink.SVG(sess.Frame())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", sink.FormatSVG.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(doc)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respond(w, http.StatusOK, sess, "")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.opts.Sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	if err := errs.ValidateNodeRef(node); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.click(w, r, node)
}

type clickRequest struct {
	Ref string `json:"ref"`
}

func (s *Server) handleClickBody(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Ref == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "ref cannot be empty"))
		return
	}
	s.click(w, r, req.Ref)
}

func (s *Server) click(w http.ResponseWriter, r *http.Request, ref string) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	outcome, err := sess.Click(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, sess, outcome)
}

func (s *Server) handleUp(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	outcome, err := sess.Up(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, sess, outcome)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	outcome, err := sess.Reset(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, sess, outcome)
}

// handleStream sends a frame every tick while the session animates, then
// one final frame.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "streaming is not supported"))
		return
	}
	tick := time.Duration(s.opts.Config.Server.Tick)
	if tick <= 0 {
		tick = 16 * time.Millisecond
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	send := func() bool {
		data, err := frame.Marshal(sess.View, sess.Frame())
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: frame\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for sess.Animating() {
		if !send() {
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
	send()
}
