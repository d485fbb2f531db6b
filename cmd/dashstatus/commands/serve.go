package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/app/generatedata"
	"github.com/slok/dashstatus/internal/app/loaddata"
	"github.com/slok/dashstatus/internal/app/notify"
	"github.com/slok/dashstatus/internal/app/sendreport"
	"github.com/slok/dashstatus/internal/connection"
	metricsprometheus "github.com/slok/dashstatus/internal/metrics/prometheus"
	"github.com/slok/dashstatus/internal/model"
	"github.com/slok/dashstatus/internal/presenter/web"
	"github.com/slok/dashstatus/internal/schedule"
	"github.com/slok/dashstatus/internal/server"
)

// Operation names exposed by the HTTP API, the status page buttons use them.
const (
	operationGenerateData = "generate-data"
	operationLoadData     = "load-data"
	operationSendReport   = "send-report"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr       string
	operationTimeout time.Duration
	reportType       string
	noMonitor        bool
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the dashboard status page and API.")
	c.Cmd.Flag("listen-address", "Address the dashboard listens on.").Default(":8080").StringVar(&c.listenAddr)
	c.Cmd.Flag("operation-timeout", "Maximum duration of an operation started from the API.").Default("10m").DurationVar(&c.operationTimeout)
	c.Cmd.Flag("report-type", "Report period sent by the send-report operation.").Default(string(model.ReportTypeDaily)).EnumVar(&c.reportType,
		string(model.ReportTypeDaily), string(model.ReportTypeWeekly), string(model.ReportTypeMonthly))
	c.Cmd.Flag("no-monitor", "Disable the periodic connection checks and heartbeats.").BoolVar(&c.noMonitor)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	cfg := c.rootCmd.Config
	clk := clock.RealClock{}

	// Metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metricsprometheus.NewRecorder(metricsprometheus.Config{Registry: reg})

	sched, err := schedule.NewScheduler(schedule.SchedulerConfig{Clock: clk, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create scheduler: %w", err)
	}

	webPresenter, err := web.NewPresenter(web.PresenterConfig{
		Scheduler: sched,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create web presenter: %w", err)
	}
	defer webPresenter.Close()

	fb, err := c.rootCmd.newFeedback(webPresenter, clk, sched, rec)
	if err != nil {
		return err
	}
	defer fb.Stop()

	backend, err := c.rootCmd.newBackend(fb)
	if err != nil {
		return err
	}

	monitor, err := connection.NewMonitor(connection.MonitorConfig{
		Feedback:          fb,
		Prober:            backend,
		CheckInterval:     cfg.CheckInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		HeartbeatMessages: cfg.HeartbeatMessages,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("could not create connection monitor: %w", err)
	}

	generateSvc, err := generatedata.NewService(generatedata.ServiceConfig{Feedback: fb, Backend: backend, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create generate data service: %w", err)
	}

	loadSvc, err := loaddata.NewService(loaddata.ServiceConfig{Feedback: fb, Backend: backend, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create load data service: %w", err)
	}

	sendSvc, err := sendreport.NewService(sendreport.ServiceConfig{
		Feedback:     fb,
		Backend:      backend,
		StepInterval: cfg.StepInterval,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create send report service: %w", err)
	}

	notifySvc, err := notify.NewService(notify.ServiceConfig{Feedback: fb, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create notify service: %w", err)
	}

	srv, err := server.New(server.ServerConfig{
		Feedback: fb,
		Operations: map[string]server.OperationFunc{
			operationGenerateData: func(ctx context.Context) (*model.Outcome, error) {
				return generateSvc.Run(ctx, generatedata.Request{Days: cfg.ReportDays, Reports: cfg.Reports})
			},
			operationLoadData: func(ctx context.Context) (*model.Outcome, error) {
				res, err := loadSvc.Run(ctx, loaddata.Request{Reports: cfg.Reports})
				if err != nil {
					return nil, err
				}
				return &res.Outcome, nil
			},
			operationSendReport: func(ctx context.Context) (*model.Outcome, error) {
				return sendSvc.Run(ctx, sendreport.Request{Type: model.ReportType(c.reportType)})
			},
		},
		Notifier:         notifySvc,
		Connection:       monitor,
		Websocket:        webPresenter,
		Gatherer:         reg,
		OperationTimeout: c.operationTimeout,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.listenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group

	// HTTP server.
	{
		g.Add(
			func() error {
				logger.Infof("Dashboard listening on %s (backend: %s)", c.listenAddr, cfg.BackendURL)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			func(_ error) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(ctx)
				_ = srv.Shutdown(ctx)
			},
		)
	}

	// Connection monitor.
	if !c.noMonitor {
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				return monitor.Run(ctx)
			},
			func(_ error) {
				cancel()
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
