package commands

import (
	"fmt"
	"io"

	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/backend/client"
	"github.com/slok/dashstatus/internal/feedback"
	"github.com/slok/dashstatus/internal/metrics"
	"github.com/slok/dashstatus/internal/presenter"
	"github.com/slok/dashstatus/internal/presenter/fake"
	"github.com/slok/dashstatus/internal/presenter/terminal"
	"github.com/slok/dashstatus/internal/printer"
	"github.com/slok/dashstatus/internal/schedule"
)

const (
	presenterTypeTerminal = "terminal"
	presenterTypeFake     = "fake"

	formatTable = "table"
	formatJSON  = "json"
)

// newPresenter returns the presenter used by the one-shot commands, the web
// presenter is only available on the serve command.
func (r *RootCommand) newPresenter(presenterType string, showConsole bool) (presenter.Presenter, error) {
	switch presenterType {
	case presenterTypeFake:
		return fake.NewPresenter(), nil
	case presenterTypeTerminal:
		p, err := terminal.NewPresenter(terminal.PresenterConfig{
			Out:         r.Stderr,
			NoColor:     r.NoColor,
			HideConsole: !showConsole,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create terminal presenter: %w", err)
		}
		return p, nil
	}

	return nil, fmt.Errorf("unknown presenter %q", presenterType)
}

func (r *RootCommand) newFeedback(p presenter.Presenter, clk clock.WithTicker, sched *schedule.Scheduler, rec metrics.Recorder) (*feedback.System, error) {
	fb, err := feedback.NewSystem(feedback.SystemConfig{
		Presenter:      p,
		Clock:          clk,
		Scheduler:      sched,
		MaxLogEntries:  r.Config.LogConsoleSize,
		StatusDuration: r.Config.StatusDuration,
		ToastDuration:  r.Config.ToastDuration,
		Metrics:        rec,
		Logger:         r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create feedback system: %w", err)
	}

	return fb, nil
}

// newBackend returns the backend client. Every request is reported on the log
// console and measured.
func (r *RootCommand) newBackend(fb *feedback.System) (*client.Client, error) {
	cli, err := client.NewClient(client.ClientConfig{
		BaseURL: r.Config.BackendURL,
		Timeout: r.Config.RequestTimeout,
		Interceptors: []client.Interceptor{
			client.MetricsInterceptor(fb.Metrics, fb.Clock),
			client.LogInterceptor(fb),
		},
		Logger: r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create backend client: %w", err)
	}

	return cli, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}
