package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/dashstatus/internal/backend/fake"
)

type FakeBackendCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr      string
	latency         time.Duration
	unhealthy       bool
	refreshError    string
	sendReportError string
}

// NewFakeBackendCommand returns the fake-backend command.
func NewFakeBackendCommand(rootCmd *RootCommand, app *kingpin.Application) *FakeBackendCommand {
	c := &FakeBackendCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("fake-backend", "Run a fake dashboard backend for demos and local development.")
	c.Cmd.Flag("listen-address", "Address the fake backend listens on.").Default(":5000").StringVar(&c.listenAddr)
	c.Cmd.Flag("latency", "Latency added to every request.").Default("1s").DurationVar(&c.latency)
	c.Cmd.Flag("unhealthy", "Fail the connection tests.").BoolVar(&c.unhealthy)
	c.Cmd.Flag("refresh-error", "Fail the data refreshes with this error.").StringVar(&c.refreshError)
	c.Cmd.Flag("send-report-error", "Fail the report sends with this error.").StringVar(&c.sendReportError)

	return c
}

func (c FakeBackendCommand) Name() string { return c.Cmd.FullCommand() }

func (c FakeBackendCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	backend, err := fake.NewServer(fake.ServerConfig{
		Latency: c.latency,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create fake backend: %w", err)
	}
	backend.SetHealthy(!c.unhealthy)
	backend.SetRefreshError(c.refreshError)
	backend.SetSendReportError(c.sendReportError)

	srv := &http.Server{
		Addr:              c.listenAddr,
		Handler:           backend,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group

	// HTTP server.
	{
		g.Add(
			func() error {
				logger.Infof("Fake backend listening on %s", c.listenAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			func(_ error) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			},
		)
	}

	// Context cancellation (from parent signal handling).
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
