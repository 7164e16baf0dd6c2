package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/numeral/pkg/storage"
)

// Azurite's published development account.
const devConnection = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestConfigFinalize(t *testing.T) {
	cfg := storage.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.ContainerName != "submissions" {
		t.Errorf("container_name: got %s, want submissions", cfg.ContainerName)
	}
	if cfg.Enabled() {
		t.Error("storage should be disabled without connection details")
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONTAINER", "digits")
	t.Setenv("TEST_STORAGE_URL", "https://numeral.blob.core.windows.net/")

	cfg := storage.Config{}
	err := cfg.Finalize(&storage.Env{
		ContainerName: "TEST_STORAGE_CONTAINER",
		ServiceURL:    "TEST_STORAGE_URL",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.ContainerName != "digits" || !cfg.Enabled() {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{ContainerName: "submissions", ConnectionString: "a"}
	base.Merge(&storage.Config{ServiceURL: "https://x"})

	if base.ConnectionString != "a" || base.ServiceURL != "https://x" || base.ContainerName != "submissions" {
		t.Errorf("merge: got %+v", base)
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"submissions/7/0190a1b2.png", nil},
		{"", storage.ErrEmptyKey},
		{"submissions/../secrets", storage.ErrInvalidKey},
		{"/absolute", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := storage.ValidateKey(tt.key); !errors.Is(err, tt.want) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{storage.ErrNotConfigured, http.StatusServiceUnavailable},
		{errors.New("network"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewRequiresConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := storage.New(&storage.Config{ContainerName: "submissions"}, logger)
	if !errors.Is(err, storage.ErrNotConfigured) {
		t.Errorf("New() error = %v, want ErrNotConfigured", err)
	}
}

func TestUploadRejectsInvalidKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sys, err := storage.New(&storage.Config{ContainerName: "submissions", ConnectionString: devConnection}, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = sys.Upload(context.Background(), "../escape.png", []byte{1}, "image/png")
	if !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Upload() error = %v, want ErrInvalidKey", err)
	}
}
