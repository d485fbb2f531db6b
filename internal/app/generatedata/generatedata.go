package generatedata

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/dashstatus/internal/backend"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

const (
	// OperationID is the ID of the CSV generation operation.
	OperationID = "generate-csv"

	operationTitle   = "Gerando CSVs"
	operationMessage = "Conectando ao GA4..."
)

// ServiceConfig is the configuration for the generate data service.
type ServiceConfig struct {
	Feedback *feedback.System
	Backend  backend.Client
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Feedback == nil {
		return fmt.Errorf("feedback system is required")
	}

	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service asks the backend to download the analytics data and store it as CSV files.
type Service struct {
	fb      *feedback.System
	backend backend.Client
	logger  log.Logger
}

// NewService creates a new generate data service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		fb:      cfg.Feedback,
		backend: cfg.Backend,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the generate data request parameters.
type Request struct {
	// Days is the number of days to download, zero uses the backend default.
	Days int
	// Reports are the report keys to generate, empty uses the backend default ones.
	Reports []string
}

// Run generates the CSV files. Backend failures are returned in the outcome.
func (s *Service) Run(ctx context.Context, req Request) (*model.Outcome, error) {
	if req.Days < 0 {
		return nil, fmt.Errorf("days can't be negative: %w", model.ErrNotValid)
	}

	op, err := s.fb.Tracker.Start(ctx, OperationID, operationTitle, operationMessage)
	if err != nil {
		return nil, fmt.Errorf("could not start operation: %w", err)
	}
	release := s.fb.Busy(ctx, model.ControlRefreshCSV)
	defer release()
	s.fb.Presenter.ShowGlobalProgress(ctx, true)
	defer s.fb.Presenter.ShowGlobalProgress(ctx, false)

	outcome := model.Outcome{OperationID: OperationID}
	res, err := s.backend.RefreshData(ctx, model.RefreshRequest{Days: req.Days, Reports: req.Reports})
	switch {
	case err != nil:
		s.logger.Warningf("Refresh data request failed: %s", err)
		outcome.Message = fmt.Sprintf("Erro de conexão: %s", err)
	case !res.Success:
		outcome.Message = res.Error
		if outcome.Message == "" {
			outcome.Message = "Erro ao gerar CSVs"
		}
	default:
		outcome.Success = true
		outcome.Files = res.Files
		outcome.Message = fmt.Sprintf("Arquivos CSV criados: %s", strings.Join(res.Files, ", "))
	}

	outcome.Duration = s.fb.Clock.Since(op.StartedAt)
	s.fb.Tracker.Complete(ctx, OperationID, outcome.Success, outcome.Message)

	return &outcome, nil
}
