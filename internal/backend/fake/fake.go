package fake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

// DefaultReports are the reports generated when a refresh doesn't ask for specific ones.
var DefaultReports = []string{"kpis_daily", "pages_top", "first_user_acquisition", "video_events", "devices"}

var defaultCatalog = []model.ReportSpec{
	{Key: "kpis_daily", Filename: "kpis_daily", Description: "Daily users, sessions and pageviews", Dimensions: []string{"date"}, Metrics: []string{"totalUsers", "sessions", "screenPageViews"}},
	{Key: "users_compare", Filename: "users_compare", Description: "Users current vs previous period", Dimensions: []string{"date"}, Metrics: []string{"totalUsers"}, ComparePeriods: true},
	{Key: "pages_top", Filename: "pages_top", Description: "Most viewed pages", Dimensions: []string{"pagePath"}, Metrics: []string{"screenPageViews"}},
	{Key: "first_user_acquisition", Filename: "first_user_acquisition", Description: "First user acquisition channels", Dimensions: []string{"firstUserSource"}, Metrics: []string{"totalUsers"}},
	{Key: "video_events", Filename: "video_events", Description: "Video start, progress and complete events", Dimensions: []string{"eventName"}, Metrics: []string{"eventCount"}},
	{Key: "devices", Filename: "devices", Description: "Users by device category", Dimensions: []string{"deviceCategory"}, Metrics: []string{"totalUsers"}},
}

// ServerConfig is the configuration of the fake backend.
type ServerConfig struct {
	// Catalog is the reports catalog, by default a GA4 like catalog.
	Catalog []model.ReportSpec
	// Latency is added to the refresh and send report requests.
	Latency time.Duration
	Logger  log.Logger
}

func (c *ServerConfig) defaults() error {
	if len(c.Catalog) == 0 {
		c.Catalog = defaultCatalog
	}

	if c.Latency < 0 {
		return fmt.Errorf("latency can't be negative")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "backend.Fake"})

	return nil
}

// Server is a fake dashboard backend that answers like the real one without
// reaching any analytics provider. The generated reports are kept in memory.
type Server struct {
	router  chi.Router
	catalog map[string]model.ReportSpec
	latency time.Duration
	logger  log.Logger

	mu           sync.Mutex
	healthy      bool
	refreshError string
	sendError    string
	generated    map[string]model.ReportRows
}

// NewServer returns a new fake backend.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		catalog:   map[string]model.ReportSpec{},
		latency:   cfg.Latency,
		logger:    cfg.Logger,
		healthy:   true,
		generated: map[string]model.ReportRows{},
	}
	for _, r := range cfg.Catalog {
		s.catalog[r.Key] = r
	}

	s.router.Post("/api/refresh-data", s.handleRefreshData)
	s.router.Get("/api/test-connection", s.handleTestConnection)
	s.router.Get("/api/reports-catalog", s.handleReportsCatalog)
	s.router.Get("/api/report", s.handleReport)
	s.router.Get("/api/send-report", s.handleSendReport)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// SetHealthy sets the connection test result.
func (s *Server) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

// SetRefreshError makes the refresh fail with the message, empty message restores the success.
func (s *Server) SetRefreshError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshError = msg
}

// SetSendReportError makes the report sending fail with the message, empty message restores the success.
func (s *Server) SetSendReportError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendError = msg
}

func (s *Server) handleRefreshData(w http.ResponseWriter, r *http.Request) {
	if !s.wait(r) {
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": fmt.Sprintf("invalid days %q", v)})
			return
		}
		days = d
	}

	keys := DefaultReports
	if v := r.URL.Query().Get("reports"); v != "" {
		keys = nil
		for _, k := range strings.Split(v, ",") {
			keys = append(keys, strings.TrimSpace(k))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshError != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   s.refreshError,
			"message": fmt.Sprintf("Erro ao atualizar dados: %s", s.refreshError),
		})
		return
	}

	files := []string{}
	for _, k := range keys {
		spec, ok := s.catalog[k]
		if !ok {
			s.logger.Warningf("Unknown report %q", k)
			continue
		}
		s.generated[k] = fakeRows(spec, days)
		files = append(files, spec.Filename+".csv")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"files":             files,
		"refreshed_at":      time.Now().Format("2006-01-02T15:04:05"),
		"message":           fmt.Sprintf("Dados atualizados com sucesso! %d arquivos CSV gerados.", len(files)),
		"reports_processed": keys,
	})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	healthy := s.healthy
	s.mu.Unlock()

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "GA4 indisponível"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Conexão testada com sucesso"})
}

func (s *Server) handleReportsCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := map[string]any{}
	for k, spec := range s.catalog {
		catalog[k] = map[string]any{
			"filename":        spec.Filename,
			"description":     spec.Description,
			"dimensions":      spec.Dimensions,
			"metrics":         spec.Metrics,
			"compare_periods": spec.ComparePeriods,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "catalog": catalog, "total_reports": len(catalog)})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing ?name="})
		return
	}

	spec, ok := s.catalog[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("unknown report '%s'", name)})
		return
	}

	s.mu.Lock()
	rows, ok := s.generated[name]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("file not found: %s.csv. Gere com /api/refresh-data primeiro.", spec.Filename)})
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSendReport(w http.ResponseWriter, r *http.Request) {
	if !s.wait(r) {
		return
	}

	reportType := model.ReportType(r.URL.Query().Get("type"))
	if reportType == "" {
		reportType = model.ReportTypeDaily
	}
	if !reportType.Valid() {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Tipo de relatório inválido"})
		return
	}

	s.mu.Lock()
	sendErr := s.sendError
	s.mu.Unlock()
	if sendErr != "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": sendErr})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": fmt.Sprintf("Relatório %s enviado", reportType)})
}

// wait applies the configured latency, returns false if the request was cancelled meanwhile.
func (s *Server) wait(r *http.Request) bool {
	if s.latency == 0 {
		return true
	}

	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-r.Context().Done():
		return false
	case <-t.C:
		return true
	}
}

func fakeRows(spec model.ReportSpec, days int) model.ReportRows {
	rows := model.ReportRows{}
	n := days
	if n > 7 {
		n = 7
	}
	for i := 0; i < n; i++ {
		row := map[string]any{}
		for _, d := range spec.Dimensions {
			row[d] = fmt.Sprintf("%s-%d", d, i+1)
		}
		metrics := append([]string{}, spec.Metrics...)
		sort.Strings(metrics)
		for j, m := range metrics {
			row[m] = (i + 1) * (j + 10)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
