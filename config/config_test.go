package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	yaml := `
token:
  bot: "bot-token-123"
endpoints:
  api: "https://api.example.test"
gateway:
  format: json
telemetry:
  metrics:
    enabled: true
  tracing:
    enabled: true
    endpoint: "otel.example.test:4317"
    sample_rate: 0.1
`
	path := writeConfig(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Token.Bot != "bot-token-123" {
		t.Errorf("token.bot = %q", cfg.Token.Bot)
	}
	if !cfg.IsBot() {
		t.Error("IsBot should be true when token.bot is set")
	}
	if cfg.Endpoints.API != "https://api.example.test" {
		t.Errorf("endpoints.api = %q", cfg.Endpoints.API)
	}
	if cfg.Gateway.Format != "json" {
		t.Errorf("gateway.format = %q", cfg.Gateway.Format)
	}
	if cfg.Telemetry.Tracing.SampleRate != 0.1 {
		t.Errorf("telemetry.tracing.sample_rate = %v", cfg.Telemetry.Tracing.SampleRate)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Endpoints.API != "https://api.stoat.chat" {
		t.Errorf("default api = %q", cfg.Endpoints.API)
	}
	if cfg.Gateway.URL != "wss://ws.revolt.chat" {
		t.Errorf("default gateway url = %q", cfg.Gateway.URL)
	}
	if cfg.Gateway.Format != "msgpack" {
		t.Errorf("default gateway format = %q", cfg.Gateway.Format)
	}
	if cfg.IsBot() {
		t.Error("IsBot should be false with no token configured")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("STOATGO_TEST_TOKEN", "sk-secret-123")

	result := expandEnv([]byte("token:\n  bot: ${STOATGO_TEST_TOKEN}"))
	want := "token:\n  bot: sk-secret-123"
	if string(result) != want {
		t.Errorf("expandEnv = %q, want %q", result, want)
	}

	path := writeConfig(t, "token:\n  bot: ${STOATGO_TEST_TOKEN}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Token.Bot != "sk-secret-123" {
		t.Errorf("token.bot = %q, want expanded value", cfg.Token.Bot)
	}
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
