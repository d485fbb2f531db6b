package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/app/loaddata"
	"github.com/slok/dashstatus/internal/metrics"
)

type LoadDataCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	reports       []string
	presenterType string
	format        string
	showLogs      bool
}

// NewLoadDataCommand returns the load-data command.
func NewLoadDataCommand(rootCmd *RootCommand, app *kingpin.Application) *LoadDataCommand {
	c := &LoadDataCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("load-data", "Load the generated reports from the backend.")
	c.Cmd.Flag("report", "Report key to load, repeatable (overrides config file).").StringsVar(&c.reports)
	registerOneShotFlags(c.Cmd, &c.presenterType, &c.format, &c.showLogs)

	return c
}

func (c LoadDataCommand) Name() string { return c.Cmd.FullCommand() }

func (c LoadDataCommand) Run(ctx context.Context) error {
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

	svc, err := loaddata.NewService(loaddata.ServiceConfig{
		Feedback: fb,
		Backend:  backend,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := loaddata.Request{Reports: c.rootCmd.Config.Reports}
	if len(c.reports) > 0 {
		req.Reports = c.reports
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not load data: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintOutcome(res.Outcome); err != nil {
		return fmt.Errorf("could not print outcome: %w", err)
	}

	if !res.Outcome.Success {
		return fmt.Errorf("operation failed: %s", res.Outcome.Message)
	}

	return nil
}
