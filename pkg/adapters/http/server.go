package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/markov"
	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/ports"
	"github.com/aretw0/markov/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes an engine and its sessions over JSON.
type Server struct {
	Engine   ports.Applier
	Sessions *session.Manager
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
	newID    func() string
	maxLimit int
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxStepLimit caps the limit clients may request. Zero removes the cap.
func WithMaxStepLimit(n int) Option {
	return func(s *Server) {
		s.maxLimit = n
	}
}

// WithIDGenerator replaces the random UUID session IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewServer wires a server around the session manager and its engine.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:   sessions.Engine(),
		Sessions: sessions,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
		maxLimit: domain.DefaultMaxStepLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for sessions.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/scheme", s.GetScheme)
	r.Post("/apply", s.Apply)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/step", s.StepSession)
			r.Post("/run", s.RunSession)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ApplyRequest is the body of POST /apply and POST /sessions.
type ApplyRequest struct {
	ID    string `json:"id,omitempty"`
	Word  string `json:"word"`
	Limit int    `json:"limit"`
}

// ApplyResponse is returned by POST /apply. Error is set when the step limit
// policy rejects an unfinished run.
type ApplyResponse struct {
	domain.Result
	Error string `json:"error,omitempty"`
}

// StepResponse is returned by POST /sessions/{id}/step.
type StepResponse struct {
	Session  *domain.Session `json:"session"`
	Advanced bool            `json:"advanced"`
	Error    string          `json:"error,omitempty"`
}

// SessionEvent is the payload of the per-session event stream.
type SessionEvent struct {
	Type    domain.EventType `json:"type"`
	Step    *domain.Step     `json:"step,omitempty"`
	Result  domain.Result    `json:"result"`
	Session string           `json:"session_id"`
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "markov-http",
		"version": strings.TrimSpace(markov.Version),
	})
}

// GetScheme handles GET /scheme.
func (s *Server) GetScheme(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Scheme().Describe())
}

// Apply handles POST /apply.
func (s *Server) Apply(w http.ResponseWriter, r *http.Request) {
	var body ApplyRequest
	if !s.decode(w, r, &body) {
		return
	}

	if err := domain.CheckStepLimit(body.Limit, s.maxLimit); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.Engine.Apply(r.Context(), body.Word, body.Limit)
	if err != nil {
		var limitErr *domain.StepLimitError
		if errors.As(err, &limitErr) {
			s.writeJSON(w, http.StatusUnprocessableEntity, ApplyResponse{Result: res, Error: err.Error()})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ApplyResponse{Result: res})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body ApplyRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := domain.CheckStepLimit(body.Limit, s.maxLimit); err != nil {
		s.writeError(w, err)
		return
	}
	id := body.ID
	if id == "" {
		id = s.newID()
	}

	sess, err := s.Sessions.Start(r.Context(), id, body.Word, body.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session started", "session_id", id)
	w.Header().Set("Location", "/sessions/"+id)
	s.writeJSON(w, http.StatusCreated, sess)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StepSession handles POST /sessions/{id}/step.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, advanced, err := s.Sessions.Advance(r.Context(), id)
	if sess == nil {
		s.writeError(w, err)
		return
	}
	var steps []domain.Step
	if advanced && len(sess.History) > 0 {
		steps = sess.History[len(sess.History)-1:]
	}
	s.publish(sess, steps)

	resp := StepResponse{Session: sess, Advanced: advanced}
	if err != nil {
		var limitErr *domain.StepLimitError
		if !errors.As(err, &limitErr) {
			s.writeError(w, err)
			return
		}
		resp.Error = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// RunSession handles POST /sessions/{id}/run.
func (s *Server) RunSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var steps []domain.Step
	sess, err := s.Sessions.RunFunc(r.Context(), id, func(step domain.Step) {
		steps = append(steps, step)
	})
	if sess == nil {
		s.writeError(w, err)
		return
	}
	s.publish(sess, steps)

	resp := StepResponse{Session: sess, Advanced: len(steps) > 0}
	if err != nil {
		var limitErr *domain.StepLimitError
		if !errors.As(err, &limitErr) {
			s.writeError(w, err)
			return
		}
		resp.Error = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// publish streams steps, then the finish event once the session is terminal.
func (s *Server) publish(sess *domain.Session, steps []domain.Step) {
	if s.Streams.Subscribers(sess.ID) == 0 {
		return
	}
	for i := range steps {
		s.broadcast(SessionEvent{Type: domain.EventStep, Step: &steps[i], Result: sess.Result(), Session: sess.ID})
	}
	if sess.Outcome.IsTerminal() {
		s.broadcast(SessionEvent{Type: domain.EventFinish, Result: sess.Result(), Session: sess.ID})
	}
}

func (s *Server) broadcast(e SessionEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.Error("failed to encode session event", "session_id", e.Session, "err", err)
		return
	}
	s.Streams.Broadcast(e.Session, string(data))
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Load(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: client subscribed", "session_id", id)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

// StatusFor maps engine and store errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStepLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrWordContainsInvalidCharacter),
		errors.Is(err, domain.ErrWordContainsExtensionCharacter),
		errors.Is(err, domain.ErrZeroStepLimit),
		errors.Is(err, domain.ErrStepLimitTooHigh):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
