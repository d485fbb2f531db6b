package model

// RefreshRequest are the parameters of a report data refresh.
type RefreshRequest struct {
	Days    int
	Reports []string
}

// RefreshResult is the result returned by the backend after a data refresh
// or any other request/response operation.
type RefreshResult struct {
	Success          bool
	Files            []string
	Error            string
	Message          string
	RefreshedAt      string
	ReportsProcessed []string
}

// ReportType is the period of a sent report.
type ReportType string

const (
	ReportTypeDaily   ReportType = "daily"
	ReportTypeWeekly  ReportType = "weekly"
	ReportTypeMonthly ReportType = "monthly"
)

// Valid returns true if the report type is a known one.
func (r ReportType) Valid() bool {
	switch r {
	case ReportTypeDaily, ReportTypeWeekly, ReportTypeMonthly:
		return true
	}
	return false
}

// ReportSpec describes a report of the backend catalog.
type ReportSpec struct {
	Key            string
	Filename       string
	Description    string
	Dimensions     []string
	Metrics        []string
	ComparePeriods bool
}

// ReportRows are the rows of a loaded report.
type ReportRows []map[string]any
