package sendreport

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/dashstatus/internal/backend"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

const (
	// OperationID is the ID of the report sending operation.
	OperationID = "send-report"
	// DefaultStepInterval is the default time between the sending steps.
	DefaultStepInterval = 700 * time.Millisecond

	operationTitle = "Enviando Relatório"
	stepProgress   = 33
)

var steps = []string{
	"Preparando dados...",
	"Enviando via Slack...",
	"Confirmando entrega...",
}

// ServiceConfig is the configuration for the send report service.
type ServiceConfig struct {
	Feedback     *feedback.System
	Backend      backend.Client
	StepInterval time.Duration
	Logger       log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Feedback == nil {
		return fmt.Errorf("feedback system is required")
	}

	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.StepInterval < 0 {
		return fmt.Errorf("step interval can't be negative")
	}
	if c.StepInterval == 0 {
		c.StepInterval = DefaultStepInterval
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service sends a dashboard report through the backend.
type Service struct {
	fb           *feedback.System
	backend      backend.Client
	stepInterval time.Duration
	logger       log.Logger
}

// NewService creates a new send report service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		fb:           cfg.Feedback,
		backend:      cfg.Backend,
		stepInterval: cfg.StepInterval,
		logger:       cfg.Logger,
	}, nil
}

// Request represents the send report request parameters.
type Request struct {
	// Type is the report period, daily by default.
	Type model.ReportType
}

// Run sends the report. The sending steps are shown one per step interval, then
// the backend is asked to send the report. Backend failures are returned in the outcome.
func (s *Service) Run(ctx context.Context, req Request) (*model.Outcome, error) {
	if req.Type == "" {
		req.Type = model.ReportTypeDaily
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown report type %q: %w", req.Type, model.ErrNotValid)
	}

	op, err := s.fb.Tracker.Start(ctx, OperationID, operationTitle, steps[0])
	if err != nil {
		return nil, fmt.Errorf("could not start operation: %w", err)
	}
	release := s.fb.Busy(ctx, model.ControlSendReport)
	defer release()

	outcome := model.Outcome{OperationID: OperationID}
	if err := s.runSteps(ctx); err != nil {
		outcome.Message = fmt.Sprintf("Erro ao enviar relatório: %s", err)
	} else {
		res, err := s.backend.SendReport(ctx, req.Type)
		switch {
		case err != nil:
			s.logger.Warningf("Send report request failed: %s", err)
			outcome.Message = fmt.Sprintf("Erro de conexão: %s", err)
		case !res.Success:
			outcome.Message = res.Error
			if outcome.Message == "" {
				outcome.Message = "Erro ao enviar relatório"
			}
		default:
			outcome.Success = true
			outcome.Message = "Relatório enviado com sucesso!"
		}
	}

	outcome.Duration = s.fb.Clock.Since(op.StartedAt)
	s.fb.Tracker.Complete(ctx, OperationID, outcome.Success, outcome.Message)

	return &outcome, nil
}

// runSteps updates the operation with every sending step and returns once the
// last one has been shown.
func (s *Service) runSteps(ctx context.Context) error {
	done := make(chan struct{})
	step := 0
	cancel, err := s.fb.Scheduler.Every(ctx, "send-report-steps", s.stepInterval, func(ctx context.Context) {
		if step >= len(steps) {
			return
		}
		step++
		s.fb.Tracker.Update(ctx, OperationID, float64(step*stepProgress), steps[step-1])
		if step == len(steps) {
			close(done)
		}
	})
	if err != nil {
		return fmt.Errorf("could not schedule steps: %w", err)
	}
	defer cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
