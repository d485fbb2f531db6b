package printer

import "github.com/slok/dashstatus/internal/model"

// Printer knows how to print dashboard feedback information in different formats.
type Printer interface {
	PrintOutcome(outcome model.Outcome) error
	PrintLogs(entries []model.LogEntry) error
	PrintReports(reports []model.ReportSpec) error
	PrintConnection(status model.ConnectionStatus) error
	PrintMessage(msg string) error
}
