package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/connection"
	"github.com/slok/dashstatus/internal/metrics"
	"github.com/slok/dashstatus/internal/model"
)

type CheckConnectionCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	presenterType string
	format        string
	showLogs      bool
}

// NewCheckConnectionCommand returns the check-connection command.
func NewCheckConnectionCommand(rootCmd *RootCommand, app *kingpin.Application) *CheckConnectionCommand {
	c := &CheckConnectionCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("check-connection", "Check the backend connection once.")
	registerOneShotFlags(c.Cmd, &c.presenterType, &c.format, &c.showLogs)

	return c
}

func (c CheckConnectionCommand) Name() string { return c.Cmd.FullCommand() }

func (c CheckConnectionCommand) Run(ctx context.Context) error {
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

	monitor, err := connection.NewMonitor(connection.MonitorConfig{
		Feedback: fb,
		Prober:   backend,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create connection monitor: %w", err)
	}

	status := monitor.Check(ctx)

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintConnection(status); err != nil {
		return fmt.Errorf("could not print connection: %w", err)
	}

	if status.State != model.ConnectionStateOnline {
		return fmt.Errorf("backend connection failed: %s", status.Text)
	}

	return nil
}
