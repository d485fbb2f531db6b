package model

import "time"

// DashboardConfig is the dashboard feedback configuration loaded from the config file.
// Zero values mean "use the default".
type DashboardConfig struct {
	BackendURL        string
	RequestTimeout    time.Duration
	CheckInterval     time.Duration
	HeartbeatInterval time.Duration
	HeartbeatMessages []string
	Reports           []string
	ReportDays        int
	LogConsoleSize    int
	StatusDuration    time.Duration
	ToastDuration     time.Duration
	StepInterval      time.Duration
}
