package dashstatus_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dashstatus/internal/backend/fake"
	intdashstatus "github.com/slok/dashstatus/test/integration/dashstatus"
)

// outcomeOutput matches the JSON output of the operation commands.
type outcomeOutput struct {
	Operation string   `json:"operation"`
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Files     []string `json:"files"`
}

func newBackend(t *testing.T) (*fake.Server, string) {
	t.Helper()

	backend, err := fake.NewServer(fake.ServerConfig{})
	require.NoError(t, err)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	return backend, intdashstatus.WriteConfigFile(t, srv.URL)
}

func TestIntegrationOperations(t *testing.T) {
	config := intdashstatus.NewConfig(t)

	tests := map[string]struct {
		setup      func(b *fake.Server)
		cmd        string
		expErr     bool
		expOutcome outcomeOutput
	}{
		"Generating data should create the CSV files.": {
			cmd: "generate-data --report kpis_daily --report devices --format json --presenter fake",
			expOutcome: outcomeOutput{
				Operation: "generate-csv",
				Success:   true,
				Message:   "Arquivos CSV criados: kpis_daily.csv, devices.csv",
				Files:     []string{"kpis_daily.csv", "devices.csv"},
			},
		},

		"A backend failure should fail the data generation.": {
			setup:  func(b *fake.Server) { b.SetRefreshError("quota exceeded") },
			cmd:    "generate-data --format json --presenter fake",
			expErr: true,
			expOutcome: outcomeOutput{
				Operation: "generate-csv",
				Message:   "quota exceeded",
			},
		},

		"Sending a report should succeed.": {
			cmd: "send-report --type weekly --format json --presenter fake",
			expOutcome: outcomeOutput{
				Operation: "send-report",
				Success:   true,
				Message:   "Relatório enviado com sucesso!",
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			backend, cfgPath := newBackend(t)
			if tc.setup != nil {
				tc.setup(backend)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			stdout, stderr, err := intdashstatus.Run(ctx, config, cfgPath, tc.cmd)
			if tc.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err, "stderr: %s", stderr)
			}

			var got outcomeOutput
			require.NoError(t, json.Unmarshal(stdout, &got))
			assert.Equal(t, tc.expOutcome, got)
		})
	}
}

func TestIntegrationLoadDataAfterGenerate(t *testing.T) {
	config := intdashstatus.NewConfig(t)
	_, cfgPath := newBackend(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, stderr, err := intdashstatus.Run(ctx, config, cfgPath, "generate-data --report devices --presenter fake")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := intdashstatus.Run(ctx, config, cfgPath, "load-data --report devices --format json --presenter fake")
	require.NoError(t, err, "stderr: %s", stderr)

	var got outcomeOutput
	require.NoError(t, json.Unmarshal(stdout, &got))
	assert.True(t, got.Success)
	assert.Equal(t, "Dados carregados no dashboard!", got.Message)
}

func TestIntegrationCheckConnection(t *testing.T) {
	config := intdashstatus.NewConfig(t)
	backend, cfgPath := newBackend(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stdout, _, err := intdashstatus.Run(ctx, config, cfgPath, "check-connection --presenter fake")
	require.NoError(t, err)
	assert.Contains(t, string(stdout), "online")

	backend.SetHealthy(false)
	stdout, _, err = intdashstatus.Run(ctx, config, cfgPath, "check-connection --presenter fake")
	require.Error(t, err)
	assert.Contains(t, string(stdout), "Erro de conexão")
}

func TestIntegrationReports(t *testing.T) {
	config := intdashstatus.NewConfig(t)
	_, cfgPath := newBackend(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stdout, stderr, err := intdashstatus.Run(ctx, config, cfgPath, "reports")
	require.NoError(t, err, "stderr: %s", stderr)

	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	assert.Len(t, lines, 7) // Header + the default catalog.
	assert.Contains(t, lines[0], "KEY")
}
