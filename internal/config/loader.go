package config

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/dashstatus/internal/model"
)

// YAMLRepository loads the dashboard configuration from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML config repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetConfig loads the configuration from a YAML file and returns a validated domain model.
func (r *YAMLRepository) GetConfig(ctx context.Context, path string) (model.DashboardConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.DashboardConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.DashboardConfig{}, ctx.Err()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.DashboardConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	m, err := cfg.toModel()
	if err != nil {
		return model.DashboardConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return m, nil
}

// Config represents the YAML structure of the dashboard configuration.
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Connection ConnectionConfig `yaml:"connection"`
	Reports    ReportsConfig    `yaml:"reports"`
	UI         UIConfig         `yaml:"ui"`
}

// BackendConfig represents the YAML structure of the backend configuration.
type BackendConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// ConnectionConfig represents the YAML structure of the connection monitor configuration.
type ConnectionConfig struct {
	CheckInterval     string   `yaml:"check_interval"`
	HeartbeatInterval string   `yaml:"heartbeat_interval"`
	HeartbeatMessages []string `yaml:"heartbeat_messages"`
}

// ReportsConfig represents the YAML structure of the reports configuration.
type ReportsConfig struct {
	Keys         []string `yaml:"keys"`
	Days         int      `yaml:"days"`
	StepInterval string   `yaml:"step_interval"`
}

// UIConfig represents the YAML structure of the visual feedback configuration.
type UIConfig struct {
	LogConsoleSize int    `yaml:"log_console_size"`
	StatusDuration string `yaml:"status_duration"`
	ToastDuration  string `yaml:"toast_duration"`
}

func (c Config) toModel() (model.DashboardConfig, error) {
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return model.DashboardConfig{}, fmt.Errorf("backend url %q is not a valid absolute URL", c.Backend.URL)
		}
	}

	if c.Reports.Days < 0 {
		return model.DashboardConfig{}, fmt.Errorf("reports days must be positive, got: %d", c.Reports.Days)
	}

	if c.UI.LogConsoleSize < 0 {
		return model.DashboardConfig{}, fmt.Errorf("log_console_size must be positive, got: %d", c.UI.LogConsoleSize)
	}

	cfg := model.DashboardConfig{
		BackendURL:        c.Backend.URL,
		HeartbeatMessages: c.Connection.HeartbeatMessages,
		Reports:           c.Reports.Keys,
		ReportDays:        c.Reports.Days,
		LogConsoleSize:    c.UI.LogConsoleSize,
	}

	durations := []struct {
		name string
		v    string
		dst  *time.Duration
	}{
		{"backend.timeout", c.Backend.Timeout, &cfg.RequestTimeout},
		{"connection.check_interval", c.Connection.CheckInterval, &cfg.CheckInterval},
		{"connection.heartbeat_interval", c.Connection.HeartbeatInterval, &cfg.HeartbeatInterval},
		{"reports.step_interval", c.Reports.StepInterval, &cfg.StepInterval},
		{"ui.status_duration", c.UI.StatusDuration, &cfg.StatusDuration},
		{"ui.toast_duration", c.UI.ToastDuration, &cfg.ToastDuration},
	}
	for _, d := range durations {
		if d.v == "" {
			continue
		}
		v, err := time.ParseDuration(d.v)
		if err != nil {
			return model.DashboardConfig{}, fmt.Errorf("%s: %w", d.name, err)
		}
		if v <= 0 {
			return model.DashboardConfig{}, fmt.Errorf("%s must be positive, got: %s", d.name, d.v)
		}
		*d.dst = v
	}

	return cfg, nil
}
