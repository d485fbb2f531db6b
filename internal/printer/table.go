package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/dashstatus/internal/model"
)

// TablePrinter prints dashboard information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintOutcome prints the result of an operation.
func (t *TablePrinter) PrintOutcome(o model.Outcome) error {
	result := "ok"
	if !o.Success {
		result = "failed"
	}

	fmt.Fprintf(t.writer, "Operation:  %s\n", o.OperationID)
	fmt.Fprintf(t.writer, "Result:     %s\n", result)
	fmt.Fprintf(t.writer, "Message:    %s\n", o.Message)
	fmt.Fprintf(t.writer, "Duration:   %s\n", model.FormatElapsed(o.Duration))
	if len(o.Files) > 0 {
		fmt.Fprintf(t.writer, "Files:      %s\n", strings.Join(o.Files, ", "))
	}

	return nil
}

// PrintLogs prints console log entries in a table format.
func (t *TablePrinter) PrintLogs(entries []model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "TIME\tLEVEL\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", FormatTimestamp(e.Timestamp), e.Level, e.Message)
	}

	return nil
}

// PrintReports prints the reports catalog in a table format.
func (t *TablePrinter) PrintReports(reports []model.ReportSpec) error {
	if len(reports) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "KEY\tFILE\tCOMPARE\tDESCRIPTION")
	for _, r := range reports {
		compare := "no"
		if r.ComparePeriods {
			compare = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s.csv\t%s\t%s\n", r.Key, r.Filename, compare, r.Description)
	}

	return nil
}

// PrintConnection prints the backend connection status.
func (t *TablePrinter) PrintConnection(s model.ConnectionStatus) error {
	fmt.Fprintf(t.writer, "State:      %s\n", s.State)
	fmt.Fprintf(t.writer, "Text:       %s\n", s.Text)
	if !s.CheckedAt.IsZero() {
		fmt.Fprintf(t.writer, "Checked:    %s\n", TimeAgo(s.CheckedAt))
	}
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
