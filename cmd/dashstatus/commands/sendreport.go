package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/app/sendreport"
	"github.com/slok/dashstatus/internal/metrics"
	"github.com/slok/dashstatus/internal/model"
)

type SendReportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	reportType    string
	presenterType string
	format        string
	showLogs      bool
}

// NewSendReportCommand returns the send-report command.
func NewSendReportCommand(rootCmd *RootCommand, app *kingpin.Application) *SendReportCommand {
	c := &SendReportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("send-report", "Send the periodic report through the backend.")
	c.Cmd.Flag("type", "Report period.").Default(string(model.ReportTypeDaily)).EnumVar(&c.reportType,
		string(model.ReportTypeDaily), string(model.ReportTypeWeekly), string(model.ReportTypeMonthly))
	registerOneShotFlags(c.Cmd, &c.presenterType, &c.format, &c.showLogs)

	return c
}

func (c SendReportCommand) Name() string { return c.Cmd.FullCommand() }

func (c SendReportCommand) Run(ctx context.Context) error {
	p, err := c.rootCmd.newPresenter(c.presenterType, c.showLogs)
	if err != nil {
		return err
	}

	fb, err := c.rootCmd.newFeedback(p, clock.RealClock{}, nil, metrics.Noop)
	if err != nil {
		return err
	}
	defer fb.Stop()

	backend, err := c.rootCmd.newBackend(fb)
	if err != nil {
		return err
	}

	svc, err := sendreport.NewService(sendreport.ServiceConfig{
		Feedback:     fb,
		Backend:      backend,
		StepInterval: c.rootCmd.Config.StepInterval,
		Logger:       c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	outcome, err := svc.Run(ctx, sendreport.Request{Type: model.ReportType(c.reportType)})
	if err != nil {
		return fmt.Errorf("could not send report: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintOutcome(*outcome); err != nil {
		return fmt.Errorf("could not print outcome: %w", err)
	}

	if !outcome.Success {
		return fmt.Errorf("operation failed: %s", outcome.Message)
	}

	return nil
}
