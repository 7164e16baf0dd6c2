package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/numeral/internal/config"
	"github.com/JaimeStill/numeral/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %s", cfg.API.BasePath)
	}
	if cfg.API.MaxBodySizeBytes() != 1<<20 {
		t.Errorf("max body size = %d, want 1MB", cfg.API.MaxBodySizeBytes())
	}
	if cfg.API.Limits.DefaultCount != 20 || cfg.API.Limits.MaxCount != 100 {
		t.Errorf("limits = %+v", cfg.API.Limits)
	}
	if cfg.Database.Enabled() || cfg.Storage.Enabled() {
		t.Error("durable store and archive should be off by default")
	}
	if len(cfg.Models.Models) != 1 || cfg.Models.Models[0].Kind != models.KindRandom {
		t.Errorf("models = %+v", cfg.Models.Models)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("level = %v", cfg.Level())
	}
}

func TestLoadFileOverlayEnv(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.toml")

	writeFile(t, base, `
log_level = "debug"

[server]
port = 9000

[database]
connection_string = "sqlite://numeral.db"

[api]
max_body_size = "512KB"

[api.limits]
max_count = 50

[[models.model]]
name = "random"
kind = "random"

[[models.model]]
name = "nn-centered"
kind = "onnx"
path = "models/centered.onnx"
scale = true
temperature = 2.5
`)
	writeFile(t, filepath.Join(dir, "config.staging.toml"), `
[server]
port = 9100

[api.limits]
default_count = 10
`)

	t.Setenv("NUMERAL_ENV", "staging")
	t.Setenv("NUMERAL_SERVER_HOST", "127.0.0.1")
	t.Setenv("NUMERAL_LOG_FORMAT", "json")

	cfg, err := config.LoadFrom(base)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9100" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.LogFormat != "json" || cfg.Level() != slog.LevelDebug {
		t.Errorf("logging = %s/%s", cfg.LogFormat, cfg.LogLevel)
	}
	if !cfg.Database.Enabled() {
		t.Error("database should be enabled")
	}
	if cfg.API.MaxBodySizeBytes() != 512*1024 {
		t.Errorf("max body size = %d", cfg.API.MaxBodySizeBytes())
	}
	if cfg.API.Limits.DefaultCount != 10 || cfg.API.Limits.MaxCount != 50 {
		t.Errorf("limits = %+v", cfg.API.Limits)
	}

	if len(cfg.Models.Models) != 2 {
		t.Fatalf("models = %+v", cfg.Models.Models)
	}
	nn := cfg.Models.Models[1]
	if nn.Name != "nn-centered" || !nn.Scale || nn.Temperature != 2.5 || nn.Path != "models/centered.onnx" {
		t.Errorf("model = %+v", nn)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `[server`},
		{"bad port", "[server]\nport = 70000"},
		{"bad duration", "shutdown_timeout = \"soon\""},
		{"bad log level", "log_level = \"loud\""},
		{"bad log format", "log_format = \"xml\""},
		{"bad base path", "[api]\nbase_path = \"/api/v1\""},
		{"bad body size", "[api]\nmax_body_size = \"lots\""},
		{"bad connection string", "[database]\nconnection_string = \"mysql://db\""},
		{"bad model", "[[models.model]]\nname = \"x\"\nkind = \"tflite\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, base, tt.content)

			if _, err := config.LoadFrom(base); err == nil {
				t.Error("LoadFrom() should fail")
			}
		})
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("NUMERAL_ENV", "")

	var cfg config.Config
	if cfg.Env() != "local" {
		t.Errorf("Env() = %s, want local", cfg.Env())
	}
}
