package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dashstatus/internal/backend/client"
	"github.com/slok/dashstatus/internal/backend/fake"
	"github.com/slok/dashstatus/internal/model"
)

type testSink struct {
	mu    sync.Mutex
	lines []string
	lvls  []model.LogLevel
}

func (s *testSink) Log(_ context.Context, level model.LogLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, message)
	s.lvls = append(s.lvls, level)
}

func newFakeBackend(t *testing.T) (*fake.Server, *httptest.Server) {
	t.Helper()
	f, err := fake.NewServer(fake.ServerConfig{})
	require.NoError(t, err)
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func TestNewClientInvalidConfig(t *testing.T) {
	_, err := client.NewClient(client.ClientConfig{})
	assert.Error(t, err)
}

func TestClientRefreshData(t *testing.T) {
	tests := map[string]struct {
		refreshError string
		req          model.RefreshRequest
		expResult    model.RefreshResult
	}{
		"A successful refresh should return the generated files.": {
			req: model.RefreshRequest{Days: 7, Reports: []string{"kpis_daily", "devices"}},
			expResult: model.RefreshResult{
				Success:          true,
				Files:            []string{"kpis_daily.csv", "devices.csv"},
				Message:          "Dados atualizados com sucesso! 2 arquivos CSV gerados.",
				ReportsProcessed: []string{"kpis_daily", "devices"},
			},
		},

		"A failed refresh should return the backend error in the result.": {
			refreshError: "quota exceeded",
			req:          model.RefreshRequest{Days: 7},
			expResult: model.RefreshResult{
				Success: false,
				Error:   "quota exceeded",
				Message: "Erro ao atualizar dados: quota exceeded",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			f, srv := newFakeBackend(t)
			f.SetRefreshError(test.refreshError)

			c, err := client.NewClient(client.ClientConfig{BaseURL: srv.URL + "/"})
			require.NoError(err)

			got, err := c.RefreshData(context.TODO(), test.req)
			require.NoError(err)

			got.RefreshedAt = ""
			assert.Equal(test.expResult, *got)
		})
	}
}

func TestClientTestConnection(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	f, srv := newFakeBackend(t)
	c, err := client.NewClient(client.ClientConfig{BaseURL: srv.URL})
	require.NoError(err)

	ok, err := c.TestConnection(context.TODO())
	require.NoError(err)
	assert.True(ok)

	f.SetHealthy(false)
	ok, err = c.TestConnection(context.TODO())
	require.NoError(err)
	assert.False(ok)

	srv.Close()
	_, err = c.TestConnection(context.TODO())
	assert.Error(err)
}

func TestClientReports(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	_, srv := newFakeBackend(t)
	c, err := client.NewClient(client.ClientConfig{BaseURL: srv.URL})
	require.NoError(err)

	specs, err := c.ReportsCatalog(context.TODO())
	require.NoError(err)
	require.NotEmpty(specs)
	for i := 1; i < len(specs); i++ {
		assert.Less(specs[i-1].Key, specs[i].Key)
	}

	// Not generated yet.
	_, err = c.Report(context.TODO(), "devices")
	assert.ErrorIs(err, model.ErrNotFound)

	_, err = c.Report(context.TODO(), "")
	assert.ErrorIs(err, model.ErrNotValid)

	_, err = c.RefreshData(context.TODO(), model.RefreshRequest{Days: 3, Reports: []string{"devices"}})
	require.NoError(err)

	rows, err := c.Report(context.TODO(), "devices")
	require.NoError(err)
	assert.Len(rows, 3)
	assert.Equal("deviceCategory-1", rows[0]["deviceCategory"])
}

func TestClientSendReport(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	f, srv := newFakeBackend(t)
	c, err := client.NewClient(client.ClientConfig{BaseURL: srv.URL})
	require.NoError(err)

	_, err = c.SendReport(context.TODO(), model.ReportType("yearly"))
	assert.ErrorIs(err, model.ErrNotValid)

	res, err := c.SendReport(context.TODO(), model.ReportTypeWeekly)
	require.NoError(err)
	assert.True(res.Success)

	f.SetSendReportError("slack down")
	res, err = c.SendReport(context.TODO(), model.ReportTypeDaily)
	require.NoError(err)
	assert.False(res.Success)
	assert.Equal("slack down", res.Error)
}

func TestLogInterceptor(t *testing.T) {
	tests := map[string]struct {
		transportErr error
		expLines     []string
		expLevels    []model.LogLevel
	}{
		"A successful request should log the start and the completion.": {
			expLines: []string{
				"Fazendo requisição: /api/test-connection",
				"Requisição concluída: /api/test-connection",
			},
			expLevels: []model.LogLevel{model.LogLevelInfo, model.LogLevelSuccess},
		},

		"A failed request should log the start and the error.": {
			transportErr: errors.New("connection refused"),
			expLines: []string{
				"Fazendo requisição: /api/test-connection",
				"Erro na requisição: /api/test-connection - connection refused",
			},
			expLevels: []model.LogLevel{model.LogLevelInfo, model.LogLevelError},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			base := client.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				if test.transportErr != nil {
					return nil, test.transportErr
				}
				rec := httptest.NewRecorder()
				rec.WriteHeader(http.StatusOK)
				resp := rec.Result()
				resp.Request = r
				return resp, nil
			})

			sink := &testSink{}
			c, err := client.NewClient(client.ClientConfig{
				BaseURL:      "http://backend.test",
				HTTPClient:   &http.Client{Transport: base},
				Interceptors: []client.Interceptor{client.LogInterceptor(sink)},
			})
			require.NoError(err)

			_, _ = c.TestConnection(context.TODO())

			assert.Len(sink.lines, 2)
			for i, exp := range test.expLines {
				assert.Contains(sink.lines[i], exp)
			}
			assert.Equal(test.expLevels, sink.lvls)
		})
	}
}

func TestChainOrder(t *testing.T) {
	assert := assert.New(t)

	calls := []string{}
	mk := func(name string) client.Interceptor {
		return func(next http.RoundTripper) http.RoundTripper {
			return client.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				calls = append(calls, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := client.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls = append(calls, "base")
		return httptest.NewRecorder().Result(), nil
	})

	rt := client.Chain(base, mk("first"), mk("second"))
	req := httptest.NewRequest(http.MethodGet, "http://backend.test/", nil)
	_, err := rt.RoundTrip(req)
	assert.NoError(err)
	assert.Equal([]string{"first", "second", "base"}, calls)
}
