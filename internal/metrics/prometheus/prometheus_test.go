package prometheus_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metricsprometheus "github.com/slok/dashstatus/internal/metrics/prometheus"
)

func TestRecorderOperations(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	reg := prometheus.NewRegistry()
	rec := metricsprometheus.NewRecorder(metricsprometheus.Config{Registry: reg})

	ctx := context.Background()
	rec.OperationStarted(ctx, "load-data")
	rec.OperationStarted(ctx, "load-data")
	rec.OperationCompleted(ctx, "load-data", true, 2*time.Second)
	rec.OperationCompleted(ctx, "load-data", false, time.Second)

	expected := `
# HELP dashstatus_operation_started_total The total number of started operations.
# TYPE dashstatus_operation_started_total counter
dashstatus_operation_started_total{operation="load-data"} 2
# HELP dashstatus_operation_completed_total The total number of completed operations.
# TYPE dashstatus_operation_completed_total counter
dashstatus_operation_completed_total{operation="load-data",success="false"} 1
dashstatus_operation_completed_total{operation="load-data",success="true"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"dashstatus_operation_started_total",
		"dashstatus_operation_completed_total",
	)
	require.NoError(err)

	n, err := testutil.GatherAndCount(reg, "dashstatus_operation_duration_seconds")
	require.NoError(err)
	assert.Equal(2, n)
}

func TestRecorderConnectionAndBackend(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metricsprometheus.NewRecorder(metricsprometheus.Config{Registry: reg})

	ctx := context.Background()
	rec.ConnectionChecked(ctx, true, 10*time.Millisecond)
	rec.ConnectionChecked(ctx, false, 10*time.Millisecond)
	rec.BackendRequest(ctx, "/api/refresh-data", false, time.Second)

	expected := `
# HELP dashstatus_connection_checks_total The total number of backend connection checks.
# TYPE dashstatus_connection_checks_total counter
dashstatus_connection_checks_total{online="false"} 1
dashstatus_connection_checks_total{online="true"} 1
# HELP dashstatus_backend_requests_total The total number of requests made to the dashboard backend.
# TYPE dashstatus_backend_requests_total counter
dashstatus_backend_requests_total{failed="false",path="/api/refresh-data"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"dashstatus_connection_checks_total",
		"dashstatus_backend_requests_total",
	)
	assert.NoError(t, err)
}
