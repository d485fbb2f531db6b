package loaddata

import (
	"context"
	"fmt"
	"math"

	"github.com/slok/dashstatus/internal/backend"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

const (
	// OperationID is the ID of the data loading operation.
	OperationID = "load-data"

	operationTitle   = "Carregando Dados"
	operationMessage = "Lendo arquivos CSV..."
)

// ServiceConfig is the configuration for the load data service.
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

// Service loads the generated reports into the dashboard.
type Service struct {
	fb      *feedback.System
	backend backend.Client
	logger  log.Logger
}

// NewService creates a new load data service.
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

// Request represents the load data request parameters.
type Request struct {
	// Reports are the report keys to load, empty loads every report of the catalog.
	Reports []string
}

// Result is the result of a data load.
type Result struct {
	Outcome model.Outcome
	// Reports are the loaded report rows by report key.
	Reports map[string]model.ReportRows
}

// Run loads the reports, updating the operation progress after each one.
// Backend failures are returned in the outcome.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	op, err := s.fb.Tracker.Start(ctx, OperationID, operationTitle, operationMessage)
	if err != nil {
		return nil, fmt.Errorf("could not start operation: %w", err)
	}
	release := s.fb.Busy(ctx, model.ControlLoadFromCSV)
	defer release()
	s.fb.Presenter.UpdateGlobalProgress(ctx, 0)
	s.fb.Presenter.ShowGlobalProgress(ctx, true)
	defer s.fb.Presenter.ShowGlobalProgress(ctx, false)

	res := &Result{
		Outcome: model.Outcome{OperationID: OperationID},
		Reports: map[string]model.ReportRows{},
	}

	err = s.load(ctx, req, res.Reports)
	if err != nil {
		s.logger.Warningf("Could not load data: %s", err)
		res.Outcome.Message = fmt.Sprintf("Erro ao carregar dados: %s", err)
	} else {
		res.Outcome.Success = true
		res.Outcome.Message = "Dados carregados no dashboard!"
	}

	res.Outcome.Duration = s.fb.Clock.Since(op.StartedAt)
	s.fb.Tracker.Complete(ctx, OperationID, res.Outcome.Success, res.Outcome.Message)

	return res, nil
}

func (s *Service) load(ctx context.Context, req Request, dst map[string]model.ReportRows) error {
	catalog, err := s.backend.ReportsCatalog(ctx)
	if err != nil {
		return fmt.Errorf("could not get reports catalog: %w", err)
	}

	specs, err := selectReports(catalog, req.Reports)
	if err != nil {
		return err
	}

	for i, spec := range specs {
		rows, err := s.backend.Report(ctx, spec.Key)
		if err != nil {
			return fmt.Errorf("could not load report %s: %w", spec.Key, err)
		}
		dst[spec.Key] = rows

		progress := math.Round(float64(i+1)*1000/float64(len(specs))) / 10
		s.fb.Tracker.Update(ctx, OperationID, progress, fmt.Sprintf("%s.csv: %d linhas", spec.Filename, len(rows)))
		s.fb.Presenter.UpdateGlobalProgress(ctx, progress)
	}

	return nil
}

func selectReports(catalog []model.ReportSpec, keys []string) ([]model.ReportSpec, error) {
	if len(keys) == 0 {
		if len(catalog) == 0 {
			return nil, fmt.Errorf("no reports available: %w", model.ErrNotFound)
		}
		return catalog, nil
	}

	byKey := map[string]model.ReportSpec{}
	for _, spec := range catalog {
		byKey[spec.Key] = spec
	}

	specs := make([]model.ReportSpec, 0, len(keys))
	for _, k := range keys {
		spec, ok := byKey[k]
		if !ok {
			return nil, fmt.Errorf("unknown report %q: %w", k, model.ErrNotFound)
		}
		specs = append(specs, spec)
	}

	return specs, nil
}
