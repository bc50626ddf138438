// Package config loads the application configuration: a YAML file for
// runtime-tunable pipeline values plus a few environment variables for
// service addresses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"monitoring-systemv1/internal/alarm"
	"monitoring-systemv1/internal/model"

	"gopkg.in/yaml.v3"
)

// Transport configures the TCP stream client.
type Transport struct {
	Host            string  `yaml:"host"`
	Port            int     `yaml:"port"`
	TimeoutS        float64 `yaml:"timeout_s"`
	ReconnectDelayS float64 `yaml:"reconnect_delay_s"`
}

// DialTimeout returns timeout_s as a duration.
func (t Transport) DialTimeout() time.Duration {
	return time.Duration(t.TimeoutS * float64(time.Second))
}

// ReconnectDelay returns reconnect_delay_s as a duration.
func (t Transport) ReconnectDelay() time.Duration {
	return time.Duration(t.ReconnectDelayS * float64(time.Second))
}

// TempDiff configures the temperature difference criteria.
type TempDiff struct {
	SensorLower string  `yaml:"sensor_lower"`
	SensorUpper string  `yaml:"sensor_upper"`
	MaxDelta    float64 `yaml:"max_delta"`
}

// FtirPeakShift configures the FTIR peak shift criteria.
type FtirPeakShift struct {
	SensorName         string    `yaml:"sensor_name"`
	ExpectedPeaksNm    []float64 `yaml:"expected_peaks_nm"`
	MaxAllowedShiftNm  []float64 `yaml:"max_allowed_shift_nm"`
	SearchWindowNm     float64   `yaml:"search_window_nm"`
	RequireLengthMatch *bool     `yaml:"require_length_match"`
}

// Alarms configures the alarm engine and its criteria. The temp_diff and
// ftir_peak_shift sections are optional; their criteria are only built
// when present.
type Alarms struct {
	ValueEps           float64        `yaml:"value_eps"`
	EnableScalarLimits bool           `yaml:"enable_scalar_limits"`
	TempDiff           *TempDiff      `yaml:"temp_diff"`
	FtirPeakShift      *FtirPeakShift `yaml:"ftir_peak_shift"`
}

// Webhook configures alarm event delivery.
type Webhook struct {
	URL        string  `yaml:"url"`
	AuthHeader string  `yaml:"auth_header"`
	TimeoutS   float64 `yaml:"timeout_s"`
	VerifyTLS  bool    `yaml:"verify_tls"`
}

// Timeout returns timeout_s as a duration.
func (w Webhook) Timeout() time.Duration {
	return time.Duration(w.TimeoutS * float64(time.Second))
}

// AuthorizationHeader returns the configured header value, prefixing the
// Bearer scheme when the config carries a bare token.
func (w Webhook) AuthorizationHeader() string {
	h := w.AuthHeader
	if h != "" && !strings.HasPrefix(h, "Bearer ") {
		h = "Bearer " + h
	}
	return h
}

// Sensors groups the configured sensor surface.
type Sensors struct {
	ScalarConfigs []model.SensorConfig `yaml:"scalar_configs"`
}

// Config is the root application configuration. The YAML file is the
// single source of truth for runtime-tunable values, so a deployment can
// be reconfigured without rebuilding.
type Config struct {
	PlotWindowSeconds int       `yaml:"plot_window_seconds"`
	Sensors           Sensors   `yaml:"sensors"`
	Transport         Transport `yaml:"transport"`
	Alarms            Alarms    `yaml:"alarms"`
	Webhook           Webhook   `yaml:"webhook"`

	// Service addresses, env-configured.
	MetricsAddr   string `yaml:"-"`
	DashboardAddr string `yaml:"-"`

	// Path records where the config was loaded from; the limits watcher
	// re-reads it.
	Path string `yaml:"-"`
}

// PlotWindow returns plot_window_seconds as a duration.
func (c *Config) PlotWindow() time.Duration {
	return time.Duration(c.PlotWindowSeconds) * time.Second
}

func defaults() Config {
	return Config{
		PlotWindowSeconds: 20,
		Transport: Transport{
			Host:            "127.0.0.1",
			Port:            9009,
			TimeoutS:        5.0,
			ReconnectDelayS: 0.5,
		},
		Alarms: Alarms{
			ValueEps:           0.5,
			EnableScalarLimits: true,
		},
		Webhook: Webhook{
			TimeoutS:  3.0,
			VerifyTLS: true,
		},
	}
}

// ResolveConfigPath resolves the config.yaml location.
//
// Priority:
//  1. explicit path argument
//  2. APP_CONFIG env var
//  3. config.yaml next to the executable
//  4. ./config.yaml
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("APP_CONFIG"); env != "" {
		return env
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "config.yaml"
}

// Load reads and validates the configuration. An empty path uses the
// default resolution chain.
func Load(path string) (*Config, error) {
	path = ResolveConfigPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.fill()

	cfg.MetricsAddr = getEnv("METRICS_ADDR", ":9090")
	cfg.DashboardAddr = getEnv("DASHBOARD_ADDR", ":8080")

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Webhook.URL == "" {
		return fmt.Errorf("webhook.url is required")
	}
	for i, sc := range c.Sensors.ScalarConfigs {
		if sc.Name == "" {
			return fmt.Errorf("sensors.scalar_configs[%d]: name is required", i)
		}
	}
	if td := c.Alarms.TempDiff; td != nil {
		if td.SensorLower == "" || td.SensorUpper == "" {
			return fmt.Errorf("alarms.temp_diff: sensor_lower and sensor_upper are required")
		}
	}
	if fp := c.Alarms.FtirPeakShift; fp != nil {
		if fp.SensorName == "" {
			return fmt.Errorf("alarms.ftir_peak_shift: sensor_name is required")
		}
		if len(fp.ExpectedPeaksNm) == 0 {
			return fmt.Errorf("alarms.ftir_peak_shift: expected_peaks_nm is required")
		}
		if len(fp.ExpectedPeaksNm) != len(fp.MaxAllowedShiftNm) {
			return fmt.Errorf("alarms.ftir_peak_shift: expected_peaks_nm and max_allowed_shift_nm must have the same length")
		}
	}
	return nil
}

// fill applies nested defaults that only make sense once a section is
// present.
func (c *Config) fill() {
	if td := c.Alarms.TempDiff; td != nil && td.MaxDelta == 0 {
		td.MaxDelta = alarm.DefaultTempMaxDelta
	}
	if fp := c.Alarms.FtirPeakShift; fp != nil {
		if fp.SearchWindowNm == 0 {
			fp.SearchWindowNm = alarm.DefaultSearchWindowNm
		}
		if fp.RequireLengthMatch == nil {
			t := true
			fp.RequireLengthMatch = &t
		}
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
