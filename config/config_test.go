package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
webhook:
  url: http://127.0.0.1:8081/webhook
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PlotWindowSeconds != 20 {
		t.Errorf("plot_window_seconds = %d", cfg.PlotWindowSeconds)
	}
	if cfg.Transport.Host != "127.0.0.1" || cfg.Transport.Port != 9009 {
		t.Errorf("transport defaults = %+v", cfg.Transport)
	}
	if cfg.Transport.DialTimeout() != 5*time.Second {
		t.Errorf("dial timeout = %s", cfg.Transport.DialTimeout())
	}
	if cfg.Transport.ReconnectDelay() != 500*time.Millisecond {
		t.Errorf("reconnect delay = %s", cfg.Transport.ReconnectDelay())
	}
	if cfg.Alarms.ValueEps != 0.5 {
		t.Errorf("value_eps = %v", cfg.Alarms.ValueEps)
	}
	if !cfg.Alarms.EnableScalarLimits {
		t.Error("enable_scalar_limits should default true")
	}
	if cfg.Alarms.TempDiff != nil || cfg.Alarms.FtirPeakShift != nil {
		t.Error("optional alarm blocks should stay nil when absent")
	}
	if !cfg.Webhook.VerifyTLS {
		t.Error("verify_tls should default true")
	}
}

func TestLoadMissingWebhookURLFails(t *testing.T) {
	_, err := Load(writeConfig(t, "plot_window_seconds: 10\n"))
	if err == nil || !strings.Contains(err.Error(), "webhook.url") {
		t.Fatalf("expected webhook.url error, got %v", err)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFtirLengthMismatchFails(t *testing.T) {
	body := minimalYAML + `
alarms:
  ftir_peak_shift:
    sensor_name: FTNIR
    expected_peaks_nm: [2250.0, 1930.0]
    max_allowed_shift_nm: [3.0]
`
	_, err := Load(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "same length") {
		t.Fatalf("expected length mismatch error, got %v", err)
	}
}

func TestLoadFtirFillsNestedDefaults(t *testing.T) {
	body := minimalYAML + `
alarms:
  ftir_peak_shift:
    sensor_name: FTNIR
    expected_peaks_nm: [2250.0]
    max_allowed_shift_nm: [3.0]
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	fp := cfg.Alarms.FtirPeakShift
	if fp.SearchWindowNm != 12.0 {
		t.Errorf("search_window_nm default = %v", fp.SearchWindowNm)
	}
	if fp.RequireLengthMatch == nil || !*fp.RequireLengthMatch {
		t.Error("require_length_match should default true")
	}
}

func TestLoadTempDiffRequiresSensors(t *testing.T) {
	body := minimalYAML + `
alarms:
  temp_diff:
    sensor_lower: TempLowerMSP
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for missing sensor_upper")
	}
}

func TestLoadScalarConfigs(t *testing.T) {
	body := minimalYAML + `
sensors:
  scalar_configs:
    - name: Pressure
      units: bar
      low_limit: 1.0
      high_limit: 2.0
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Sensors.ScalarConfigs) != 1 {
		t.Fatalf("scalar configs = %d", len(cfg.Sensors.ScalarConfigs))
	}
	sc := cfg.Sensors.ScalarConfigs[0]
	if sc.Name != "Pressure" || sc.Units != "bar" || sc.LowLimit != 1.0 || sc.HighLimit != 2.0 {
		t.Errorf("scalar config = %+v", sc)
	}
}

func TestAuthorizationHeaderBearerPrefix(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"dev-token", "Bearer dev-token"},
		{"Bearer dev-token", "Bearer dev-token"},
	}
	for _, c := range cases {
		w := Webhook{AuthHeader: c.in}
		if got := w.AuthorizationHeader(); got != c.want {
			t.Errorf("AuthorizationHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveConfigPathPriority(t *testing.T) {
	if got := ResolveConfigPath("/explicit/config.yaml"); got != "/explicit/config.yaml" {
		t.Errorf("explicit path ignored: %s", got)
	}

	t.Setenv("APP_CONFIG", "/env/config.yaml")
	if got := ResolveConfigPath(""); got != "/env/config.yaml" {
		t.Errorf("APP_CONFIG ignored: %s", got)
	}
}
