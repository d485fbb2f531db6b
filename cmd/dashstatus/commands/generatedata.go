package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/app/generatedata"
	"github.com/slok/dashstatus/internal/metrics"
)

type GenerateDataCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	days          int
	reports       []string
	presenterType string
	format        string
	showLogs      bool
}

// NewGenerateDataCommand returns the generate-data command.
func NewGenerateDataCommand(rootCmd *RootCommand, app *kingpin.Application) *GenerateDataCommand {
	c := &GenerateDataCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("generate-data", "Ask the backend to download fresh data and generate the report CSV files.")
	c.Cmd.Flag("days", "Number of days to download (overrides config file).").IntVar(&c.days)
	c.Cmd.Flag("report", "Report key to generate, repeatable (overrides config file).").StringsVar(&c.reports)
	registerOneShotFlags(c.Cmd, &c.presenterType, &c.format, &c.showLogs)

	return c
}

func (c GenerateDataCommand) Name() string { return c.Cmd.FullCommand() }

func (c GenerateDataCommand) Run(ctx context.Context) error {
	cfg := c.rootCmd.Config

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

	svc, err := generatedata.NewService(generatedata.ServiceConfig{
		Feedback: fb,
		Backend:  backend,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := generatedata.Request{Days: cfg.ReportDays, Reports: cfg.Reports}
	if c.days > 0 {
		req.Days = c.days
	}
	if len(c.reports) > 0 {
		req.Reports = c.reports
	}

	outcome, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not generate data: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintOutcome(*outcome); err != nil {
		return fmt.Errorf("could not print outcome: %w", err)
	}

	if !outcome.Success {
		return fmt.Errorf("operation failed: %s", outcome.Message)
	}

	return nil
}

func registerOneShotFlags(cmd *kingpin.CmdClause, presenterType, format *string, showLogs *bool) {
	cmd.Flag("presenter", "Where the progress feedback is rendered (terminal, fake).").Default(presenterTypeTerminal).EnumVar(presenterType, presenterTypeTerminal, presenterTypeFake)
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
	cmd.Flag("show-logs", "Show the log console lines while running.").BoolVar(showLogs)
}
