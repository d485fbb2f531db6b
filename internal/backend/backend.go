package backend

import (
	"context"

	"github.com/slok/dashstatus/internal/model"
)

// Client is the dashboard backend client.
//
//go:generate mockery --case underscore --output backendmock --outpkg backendmock --name Client
type Client interface {
	// RefreshData asks the backend to download the report data and store it as CSV files.
	// Backend reported failures are returned in the result, not as errors.
	RefreshData(ctx context.Context, req model.RefreshRequest) (*model.RefreshResult, error)

	// TestConnection checks the backend is responding. ok is false when the backend
	// answered with a non successful status, err is set when the backend couldn't be reached.
	TestConnection(ctx context.Context) (ok bool, err error)

	// ReportsCatalog returns the reports the backend knows about.
	ReportsCatalog(ctx context.Context) ([]model.ReportSpec, error)

	// Report returns the rows of a generated report.
	Report(ctx context.Context, name string) (model.ReportRows, error)

	// SendReport asks the backend to send a report.
	// Backend reported failures are returned in the result, not as errors.
	SendReport(ctx context.Context, reportType model.ReportType) (*model.RefreshResult, error)
}
