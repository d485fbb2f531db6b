package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slok/dashstatus/internal/app/notify"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter/web"
)

// DefaultOperationTimeout is the default max duration of an operation started from the API.
const DefaultOperationTimeout = 10 * time.Minute

// OperationFunc runs a dashboard operation.
type OperationFunc func(ctx context.Context) (*model.Outcome, error)

// ConnectionChecker checks the backend connection on demand.
type ConnectionChecker interface {
	Check(ctx context.Context) model.ConnectionStatus
}

// Notifier shows ad-hoc notifications.
type Notifier interface {
	Run(ctx context.Context, req notify.Request) error
}

// ServerConfig is the configuration of the dashboard HTTP server.
type ServerConfig struct {
	Feedback *feedback.System
	// Operations are the operations that can be started from the API by name.
	Operations map[string]OperationFunc
	Notifier   Notifier
	// Connection is optional, without it connection checks are not available.
	Connection ConnectionChecker
	// Websocket streams the feedback events to the browsers, optional.
	Websocket http.Handler
	// Gatherer exposes the metrics, optional.
	Gatherer         prometheus.Gatherer
	OperationTimeout time.Duration
	Logger           log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.Feedback == nil {
		return fmt.Errorf("feedback system is required")
	}

	if c.Notifier == nil {
		return fmt.Errorf("notifier is required")
	}

	if c.Operations == nil {
		c.Operations = map[string]OperationFunc{}
	}

	if c.OperationTimeout == 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "server.Server"})

	return nil
}

// Server is the dashboard HTTP server: it serves the status page, the websocket
// event stream and the API used by the page.
type Server struct {
	router           chi.Router
	fb               *feedback.System
	operations       map[string]OperationFunc
	notifier         Notifier
	connection       ConnectionChecker
	operationTimeout time.Duration
	logger           log.Logger

	mu      sync.Mutex
	running map[string]bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// New returns a new dashboard HTTP server.
func New(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		router:           chi.NewRouter(),
		fb:               cfg.Feedback,
		operations:       cfg.Operations,
		notifier:         cfg.Notifier,
		connection:       cfg.Connection,
		operationTimeout: cfg.OperationTimeout,
		logger:           cfg.Logger,
		running:          map[string]bool{},
		ctx:              ctx,
		cancel:           cancel,
	}

	s.router.Use(middleware.Recoverer)

	static := web.StaticHandler()
	s.router.Get("/", static.ServeHTTP)
	s.router.Handle("/static/*", http.StripPrefix("/static", static))
	if cfg.Websocket != nil {
		s.router.Handle("/ws", cfg.Websocket)
	}
	if cfg.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/operations", s.handleListOperations)
		r.Post("/operations/{name}", s.handleStartOperation)
		r.Get("/logs", s.handleListLogs)
		r.Post("/logs/toggle", s.handleToggleLogs)
		r.Post("/toasts", s.handleNotify)
		r.Post("/connection/check", s.handleCheckConnection)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Shutdown cancels the running operations and waits until they have finished
// or the context is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait waits until all the running operations have finished.
func (s *Server) Wait() { s.wg.Wait() }

type operationJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	StartedAt time.Time `json:"started_at"`
	Elapsed   string    `json:"elapsed"`
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	ops := s.fb.Tracker.Active()
	res := make([]operationJSON, 0, len(ops))
	for _, op := range ops {
		res = append(res, operationJSON{
			ID:        op.ID,
			Title:     op.Title,
			Message:   op.Message,
			StartedAt: op.StartedAt,
			Elapsed:   model.FormatElapsed(s.fb.Clock.Since(op.StartedAt)),
		})
	}

	names := make([]string, 0, len(s.operations))
	for name := range s.operations {
		names = append(names, name)
	}
	sort.Strings(names)

	writeJSON(w, http.StatusOK, map[string]any{"active": res, "available": names})
}

func (s *Server) handleStartOperation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	op, ok := s.operations[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown operation %q: %w", name, model.ErrNotFound))
		return
	}

	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, fmt.Errorf("operation %q is running: %w", name, model.ErrAlreadyExists))
		return
	}
	s.running[name] = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.running, name)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(s.ctx, s.operationTimeout)
		defer cancel()

		outcome, err := op(ctx)
		if err != nil {
			s.logger.Errorf("Operation %q failed: %s", name, err)
			return
		}
		s.logger.Infof("Operation %q finished (success: %t, duration: %s)", name, outcome.Success, model.FormatElapsed(outcome.Duration))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"operation": name, "status": "accepted"})
}

type logEntryJSON struct {
	Sequence  uint64    `json:"seq"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	entries := s.fb.Console.Entries()
	res := make([]logEntryJSON, 0, len(entries))
	for _, e := range entries {
		res = append(res, logEntryJSON{Sequence: e.Sequence, Level: string(e.Level), Message: e.Message, Timestamp: e.Timestamp})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleToggleLogs(w http.ResponseWriter, r *http.Request) {
	s.fb.Console.Toggle(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type notifyRequestJSON struct {
	Target  string `json:"target"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if req.Target == "" {
		req.Target = string(notify.TargetToast)
	}

	err := s.notifier.Run(r.Context(), notify.Request{
		Target:  notify.Target(req.Target),
		Kind:    req.Kind,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrNotValid) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type connectionJSON struct {
	State     string    `json:"state"`
	Text      string    `json:"text"`
	CheckedAt time.Time `json:"checked_at"`
}

func (s *Server) handleCheckConnection(w http.ResponseWriter, r *http.Request) {
	if s.connection == nil {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("connection checks are not enabled"))
		return
	}

	st := s.connection.Check(r.Context())
	writeJSON(w, http.StatusOK, connectionJSON{State: string(st.State), Text: st.Text, CheckedAt: st.CheckedAt})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
