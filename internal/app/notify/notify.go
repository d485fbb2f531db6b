package notify

import (
	"context"
	"fmt"

	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

// Target is where a notification is rendered.
type Target string

const (
	TargetToast  Target = "toast"
	TargetStatus Target = "status"
	TargetLog    Target = "log"
)

// ServiceConfig is the configuration for the notify service.
type ServiceConfig struct {
	Feedback *feedback.System
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Feedback == nil {
		return fmt.Errorf("feedback system is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service shows ad-hoc notifications (toasts, status cards and console lines)
// that are not tied to an operation.
type Service struct {
	fb     *feedback.System
	logger log.Logger
}

// NewService creates a new notify service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		fb:     cfg.Feedback,
		logger: cfg.Logger,
	}, nil
}

// Request represents the notify request parameters.
type Request struct {
	Target Target
	// Kind is the status kind for toasts and cards, and the level for log lines.
	// Info by default.
	Kind    string
	Title   string
	Message string
}

func (r *Request) validate() error {
	if r.Message == "" {
		return fmt.Errorf("message is required")
	}

	if r.Kind == "" {
		r.Kind = string(model.StatusKindInfo)
	}

	switch r.Target {
	case TargetToast:
		if k := model.StatusKind(r.Kind); !k.Valid() || k == model.StatusKindLoading {
			return fmt.Errorf("invalid toast kind %q", r.Kind)
		}
	case TargetStatus:
		if !model.StatusKind(r.Kind).Valid() {
			return fmt.Errorf("invalid status kind %q", r.Kind)
		}
		if r.Title == "" {
			return fmt.Errorf("title is required for status cards")
		}
	case TargetLog:
		switch model.LogLevel(r.Kind) {
		case model.LogLevelInfo, model.LogLevelWarning, model.LogLevelError, model.LogLevelSuccess:
		default:
			return fmt.Errorf("invalid log level %q", r.Kind)
		}
	default:
		return fmt.Errorf("unknown target %q", r.Target)
	}

	return nil
}

// Run renders the notification.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return fmt.Errorf("invalid request: %w: %w", err, model.ErrNotValid)
	}

	switch req.Target {
	case TargetToast:
		s.fb.Toast(ctx, model.StatusKind(req.Kind), req.Message)
	case TargetStatus:
		s.fb.Status(ctx, model.StatusKind(req.Kind), req.Title, req.Message)
	case TargetLog:
		s.fb.Log(ctx, model.LogLevel(req.Kind), req.Message)
	}
	s.logger.Debugf("%s notification shown", req.Target)

	return nil
}
