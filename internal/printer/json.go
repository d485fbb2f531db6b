package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/dashstatus/internal/model"
)

// JSONPrinter prints dashboard information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type outcomeOutput struct {
	Operation string   `json:"operation"`
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Files     []string `json:"files,omitempty"`
	Duration  string   `json:"duration"`
}

type logEntryOutput struct {
	Sequence  uint64    `json:"seq"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type reportOutput struct {
	Key            string   `json:"key"`
	File           string   `json:"file"`
	Description    string   `json:"description"`
	Dimensions     []string `json:"dimensions"`
	Metrics        []string `json:"metrics"`
	ComparePeriods bool     `json:"compare_periods"`
}

type connectionOutput struct {
	State     string     `json:"state"`
	Text      string     `json:"text"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintOutcome prints the result of an operation in JSON format.
func (j *JSONPrinter) PrintOutcome(o model.Outcome) error {
	return j.encode(outcomeOutput{
		Operation: o.OperationID,
		Success:   o.Success,
		Message:   o.Message,
		Files:     o.Files,
		Duration:  model.FormatElapsed(o.Duration),
	})
}

// PrintLogs prints console log entries in JSON format.
func (j *JSONPrinter) PrintLogs(entries []model.LogEntry) error {
	items := make([]logEntryOutput, len(entries))
	for i, e := range entries {
		items[i] = logEntryOutput{
			Sequence:  e.Sequence,
			Level:     string(e.Level),
			Message:   e.Message,
			Timestamp: e.Timestamp.UTC(),
		}
	}
	return j.encode(items)
}

// PrintReports prints the reports catalog in JSON format.
func (j *JSONPrinter) PrintReports(reports []model.ReportSpec) error {
	items := make([]reportOutput, len(reports))
	for i, r := range reports {
		items[i] = reportOutput{
			Key:            r.Key,
			File:           r.Filename + ".csv",
			Description:    r.Description,
			Dimensions:     r.Dimensions,
			Metrics:        r.Metrics,
			ComparePeriods: r.ComparePeriods,
		}
	}
	return j.encode(items)
}

// PrintConnection prints the backend connection status in JSON format.
func (j *JSONPrinter) PrintConnection(s model.ConnectionStatus) error {
	output := connectionOutput{State: string(s.State), Text: s.Text}
	if !s.CheckedAt.IsZero() {
		checkedAt := s.CheckedAt.UTC()
		output.CheckedAt = &checkedAt
	}
	return j.encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
