package client

import (
	"context"
	"fmt"
	"net/http"

	"k8s.io/utils/clock"

	"github.com/slok/dashstatus/internal/metrics"
	"github.com/slok/dashstatus/internal/model"
)

// Interceptor is a request middleware registered on the backend client.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc is a function that implements http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with the interceptors, the first interceptor is the outermost one.
func Chain(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	rt := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		rt = interceptors[i](rt)
	}
	return rt
}

// LogSink receives the request log lines.
type LogSink interface {
	Log(ctx context.Context, level model.LogLevel, message string)
}

// LogInterceptor writes every request start, completion and failure on the log console.
func LogInterceptor(sink LogSink) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx := r.Context()
			target := r.URL.RequestURI()

			sink.Log(ctx, model.LogLevelInfo, fmt.Sprintf("Fazendo requisição: %s", target))
			resp, err := next.RoundTrip(r)
			if err != nil {
				sink.Log(ctx, model.LogLevelError, fmt.Sprintf("Erro na requisição: %s - %s", target, err))
				return nil, err
			}
			sink.Log(ctx, model.LogLevelSuccess, fmt.Sprintf("Requisição concluída: %s", target))

			return resp, nil
		})
	}
}

// MetricsInterceptor measures every request made to the backend.
func MetricsInterceptor(rec metrics.Recorder, clk clock.PassiveClock) Interceptor {
	if clk == nil {
		clk = clock.RealClock{}
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := clk.Now()
			resp, err := next.RoundTrip(r)
			failed := err != nil || resp.StatusCode >= http.StatusInternalServerError
			rec.BackendRequest(r.Context(), r.URL.Path, failed, clk.Since(start))
			return resp, err
		})
	}
}
