package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/metrics"
	"github.com/slok/dashstatus/internal/presenter/fake"
)

type ReportsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewReportsCommand returns the reports command.
func NewReportsCommand(rootCmd *RootCommand, app *kingpin.Application) *ReportsCommand {
	c := &ReportsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("reports", "List the reports catalog of the backend.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ReportsCommand) Name() string { return c.Cmd.FullCommand() }

func (c ReportsCommand) Run(ctx context.Context) error {
	// Nothing is rendered for a plain listing.
	fb, err := c.rootCmd.newFeedback(fake.NewPresenter(), clock.RealClock{}, nil, metrics.Noop)
	if err != nil {
		return err
	}
	defer fb.Stop()

	backend, err := c.rootCmd.newBackend(fb)
	if err != nil {
		return err
	}

	catalog, err := backend.ReportsCatalog(ctx)
	if err != nil {
		return fmt.Errorf("could not get reports catalog: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintReports(catalog); err != nil {
		return fmt.Errorf("could not print reports: %w", err)
	}

	return nil
}
