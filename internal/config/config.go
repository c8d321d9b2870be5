package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/bootstrap"
	"github.com/llehouerou/rpconsole/internal/logging"
	"github.com/llehouerou/rpconsole/internal/playback"
)

const (
	appName   = "rpconsole"
	envPrefix = "RPCONSOLE_"
)

type Config struct {
	StationID string `koanf:"station_id"`
	PageURL   string `koanf:"page_url"`   // console URL; its query carries launch overrides
	StatePath string `koanf:"state_path"` // sqlite file, defaults to the XDG data dir

	Notifications bool `koanf:"notifications"` // now-playing desktop notifications

	Env       EnvironmentConfig `koanf:"environment"`
	API       APIConfig         `koanf:"api"`
	Bootstrap BootstrapConfig   `koanf:"bootstrap"`
	Log       LogConfig         `koanf:"log"`
	Metrics   MetricsConfig     `koanf:"metrics"`
}

// EnvironmentConfig holds the host defaults handed to the bootstrap.
type EnvironmentConfig struct {
	Sources          []playback.Source `koanf:"sources"`
	Live             bool              `koanf:"live"`
	BufferTimeMs     int               `koanf:"buffer_time_ms"`
	ForceReducedFunc bool              `koanf:"force_reduced_func"`
}

// APIConfig overrides the widget service endpoints.
type APIConfig struct {
	Init        string `koanf:"init"`
	StationList string `koanf:"station_list"`
	OnDemand    string `koanf:"on_demand"`
	OnAir       string `koanf:"on_air"`
	TimeoutMs   int    `koanf:"timeout_ms"` // per request (default: 10000)
}

// BootstrapConfig tunes the configuration race.
type BootstrapConfig struct {
	FallbackTimeoutMs int `koanf:"fallback_timeout_ms"` // default: 5000
}

// LogConfig selects log level, format and destination.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error (default: info)
	Format string `koanf:"format"` // "console" or "json" (default: console)
	Output string `koanf:"output"` // file path, "stderr" or "stdout"
}

// MetricsConfig enables the prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr"` // e.g. "127.0.0.1:9464"
}

// Load reads the default config files and the environment. A non-empty
// explicit path replaces the default files and must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	paths := getConfigPaths()
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		paths = []string{explicit}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.StationID = strings.TrimSpace(cfg.StationID)
	if cfg.StatePath != "" {
		cfg.StatePath = expandPath(cfg.StatePath)
	}
	if out := cfg.Log.Output; out != "" && out != logging.OutputStderr && out != logging.OutputStdout {
		cfg.Log.Output = expandPath(out)
	}

	return cfg, nil
}

// envKey maps RPCONSOLE_LOG__LEVEL to log.level.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/rpconsole/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate reports settings the console cannot start without.
func (c *Config) Validate() error {
	if c.StationID == "" {
		return errors.New("station_id is required")
	}
	return nil
}

// Environment maps the config onto the bootstrap defaults.
func (c *Config) Environment() bootstrap.Environment {
	e := c.Env
	bt := time.Duration(max(e.BufferTimeMs, 0)) * time.Millisecond
	return bootstrap.Environment{
		StationID:        c.StationID,
		Sources:          append([]playback.Source(nil), e.Sources...),
		Live:             e.Live,
		BufferTime:       bt,
		ForceReducedFunc: e.ForceReducedFunc,
	}
}

// GetAPIConfig returns the endpoints and request timeout with defaults applied.
func (c *Config) GetAPIConfig() (api.Endpoints, time.Duration) {
	endpoints := api.DefaultEndpoints()
	if c.API.Init != "" {
		endpoints.Init = c.API.Init
	}
	if c.API.StationList != "" {
		endpoints.StationList = c.API.StationList
	}
	if c.API.OnDemand != "" {
		endpoints.OnDemand = c.API.OnDemand
	}
	if c.API.OnAir != "" {
		endpoints.OnAir = c.API.OnAir
	}

	timeout := 10 * time.Second
	if c.API.TimeoutMs > 0 {
		timeout = time.Duration(c.API.TimeoutMs) * time.Millisecond
	}
	return endpoints, timeout
}

// FallbackTimeout returns the race grace period.
func (c *Config) FallbackTimeout() time.Duration {
	if c.Bootstrap.FallbackTimeoutMs <= 0 {
		return bootstrap.DefaultFallbackTimeout
	}
	return time.Duration(c.Bootstrap.FallbackTimeoutMs) * time.Millisecond
}

// GetLogConfig returns the logging configuration with defaults applied.
func (c *Config) GetLogConfig() logging.Config {
	cfg := logging.Config{
		Level:  strings.ToLower(c.Log.Level),
		Format: strings.ToLower(c.Log.Format),
		Output: c.Log.Output,
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format != logging.FormatJSON {
		cfg.Format = logging.FormatConsole
	}
	if cfg.Output == "" {
		cfg.Output = logging.DefaultOutput()
	}
	return cfg
}

// HasMetrics returns true if the metrics endpoint is configured.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Addr != ""
}
