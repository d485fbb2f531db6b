package dashstatus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/dashstatus/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "dashstatus"
	}

	// go test changes the CWD to the test package directory, relative paths are useless.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("DASHSTATUS_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("dashstatus binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "DASHSTATUS_INTEGRATION"
		envBinary     = "DASHSTATUS_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// WriteConfigFile writes a config file pointing to the backend with fast report steps.
func WriteConfigFile(t *testing.T, backendURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := fmt.Sprintf("backend:\n  url: %s\nreports:\n  days: 3\n  step_interval: 10ms\n", backendURL)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("could not write config file: %s", err)
	}

	return path
}

// Run runs a dashstatus command using a config file.
func Run(ctx context.Context, config Config, configPath, cmdArgs string) (stdout, stderr []byte, err error) {
	env := []string{"DASHSTATUS_CONFIG=" + configPath}
	return testutils.RunDashstatus(ctx, env, config.Binary, cmdArgs, true)
}
