package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/slok/dashstatus/internal/backend"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

const (
	// DefaultTimeout is the default backend request timeout.
	DefaultTimeout = 5 * time.Minute

	pathRefreshData    = "/api/refresh-data"
	pathTestConnection = "/api/test-connection"
	pathReportsCatalog = "/api/reports-catalog"
	pathReport         = "/api/report"
	pathSendReport     = "/api/send-report"
)

// ClientConfig is the configuration of the backend HTTP client.
type ClientConfig struct {
	BaseURL string
	// HTTPClient is the base client, its transport is wrapped by the interceptors.
	HTTPClient *http.Client
	Timeout    time.Duration
	// Interceptors wrap every request, the first one is the outermost.
	Interceptors []Interceptor
	Logger       log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}

	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "backend.Client"})

	return nil
}

// Client is the HTTP backend.Client implementation.
type Client struct {
	baseURL string
	cli     *http.Client
	logger  log.Logger
}

var _ backend.Client = &Client{}

// NewClient returns a new backend HTTP client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base := cfg.HTTPClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	cli := *cfg.HTTPClient
	cli.Timeout = cfg.Timeout
	cli.Transport = Chain(base, cfg.Interceptors...)

	return &Client{
		baseURL: cfg.BaseURL,
		cli:     &cli,
		logger:  cfg.Logger,
	}, nil
}

type resultResponse struct {
	Success          bool     `json:"success"`
	Files            []string `json:"files,omitempty"`
	Error            string   `json:"error,omitempty"`
	Message          string   `json:"message,omitempty"`
	RefreshedAt      string   `json:"refreshed_at,omitempty"`
	ReportsProcessed []string `json:"reports_processed,omitempty"`
}

func (r resultResponse) toModel() *model.RefreshResult {
	return &model.RefreshResult{
		Success:          r.Success,
		Files:            r.Files,
		Error:            r.Error,
		Message:          r.Message,
		RefreshedAt:      r.RefreshedAt,
		ReportsProcessed: r.ReportsProcessed,
	}
}

func (c *Client) RefreshData(ctx context.Context, req model.RefreshRequest) (*model.RefreshResult, error) {
	q := url.Values{}
	if req.Days > 0 {
		q.Set("days", strconv.Itoa(req.Days))
	}
	if len(req.Reports) > 0 {
		q.Set("reports", strings.Join(req.Reports, ","))
	}

	resp, err := c.do(ctx, http.MethodPost, pathRefreshData, q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The backend answers failures with the same body, so the status code is not checked.
	var r resultResponse
	if err := decodeJSON(resp, &r); err != nil {
		return nil, err
	}

	return r.toModel(), nil
}

func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, pathTestConnection, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

type catalogResponse struct {
	Success bool                     `json:"success"`
	Error   string                   `json:"error,omitempty"`
	Catalog map[string]catalogReport `json:"catalog"`
}

type catalogReport struct {
	Filename       string   `json:"filename"`
	Description    string   `json:"description"`
	Dimensions     []string `json:"dimensions"`
	Metrics        []string `json:"metrics"`
	ComparePeriods bool     `json:"compare_periods"`
}

func (c *Client) ReportsCatalog(ctx context.Context) ([]model.ReportSpec, error) {
	resp, err := c.do(ctx, http.MethodGet, pathReportsCatalog, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r catalogResponse
	if err := decodeJSON(resp, &r); err != nil {
		return nil, err
	}

	if !r.Success {
		return nil, fmt.Errorf("%s: %w", r.Error, model.ErrBackendRejected)
	}

	specs := make([]model.ReportSpec, 0, len(r.Catalog))
	for key, rep := range r.Catalog {
		specs = append(specs, model.ReportSpec{
			Key:            key,
			Filename:       rep.Filename,
			Description:    rep.Description,
			Dimensions:     rep.Dimensions,
			Metrics:        rep.Metrics,
			ComparePeriods: rep.ComparePeriods,
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Key < specs[j].Key })

	return specs, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Report(ctx context.Context, name string) (model.ReportRows, error) {
	if name == "" {
		return nil, fmt.Errorf("report name is required: %w", model.ErrNotValid)
	}

	resp, err := c.do(ctx, http.MethodGet, pathReport, url.Values{"name": []string{name}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if err := decodeJSON(resp, &e); err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", e.Error, model.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", e.Error, model.ErrBackendRejected)
	}

	var rows model.ReportRows
	if err := decodeJSON(resp, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (c *Client) SendReport(ctx context.Context, reportType model.ReportType) (*model.RefreshResult, error) {
	if !reportType.Valid() {
		return nil, fmt.Errorf("unknown report type %q: %w", reportType, model.ErrNotValid)
	}

	resp, err := c.do(ctx, http.MethodGet, pathSendReport, url.Values{"type": []string{string(reportType)}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r resultResponse
	if err := decodeJSON(resp, &r); err != nil {
		return nil, err
	}

	return r.toModel(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf("%s %s", method, u)

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func decodeJSON(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("could not decode %s response (status %d): %w", resp.Request.URL.Path, resp.StatusCode, err)
	}
	return nil
}
