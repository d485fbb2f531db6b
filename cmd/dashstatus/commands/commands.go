package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/dashstatus/internal/config"
	"github.com/slok/dashstatus/internal/log"
	"github.com/slok/dashstatus/internal/model"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	// DefaultBackendURL is the backend used when none is configured.
	DefaultBackendURL = "http://localhost:5000"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug          bool
	NoLog          bool
	NoColor        bool
	LoggerType     string
	ConfigPath     string
	BackendURL     string
	RequestTimeout time.Duration

	// Config is the resolved configuration, file values overridden by flags.
	Config model.DashboardConfig

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger

	defaultConfigPath string
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{
		defaultConfigPath: filepath.Join(homedir.HomeDir(), ".dashstatus", "config.yaml"),
	}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger and terminal color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("config", "Path to the YAML configuration file.").Default(c.defaultConfigPath).StringVar(&c.ConfigPath)
	app.Flag("backend-url", "Dashboard backend base URL (overrides config file).").StringVar(&c.BackendURL)
	app.Flag("request-timeout", "Backend request timeout (overrides config file).").DurationVar(&c.RequestTimeout)

	return c
}

// LoadConfig loads the configuration file and applies the flag overrides. A missing
// file is only an error when the path was set explicitly.
func (r *RootCommand) LoadConfig(ctx context.Context) error {
	repo := config.NewYAMLRepository(os.DirFS(filepath.Dir(r.ConfigPath)))
	cfg, err := repo.GetConfig(ctx, filepath.Base(r.ConfigPath))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || r.ConfigPath != r.defaultConfigPath {
			return fmt.Errorf("could not load config %q: %w", r.ConfigPath, err)
		}
		cfg = model.DashboardConfig{}
	}

	r.Config = resolveConfig(cfg, r.BackendURL, r.RequestTimeout)
	return nil
}

func resolveConfig(cfg model.DashboardConfig, backendURL string, timeout time.Duration) model.DashboardConfig {
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}

	if timeout > 0 {
		cfg.RequestTimeout = timeout
	}

	return cfg
}
