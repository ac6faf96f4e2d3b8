package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090
storage:
  dsn: "test.db"
providers:
  local_vllm:
    base_url: "http://vllm:8000/v1"
    model: "test-model"
analysis:
  enabled: true
  url: "http://scorer:8001"
  timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Storage.DSN != "test.db" {
		t.Errorf("unexpected dsn %q", cfg.Storage.DSN)
	}
	if cfg.Providers.LocalVLLM.BaseURL != "http://vllm:8000/v1" {
		t.Errorf("unexpected local base url %q", cfg.Providers.LocalVLLM.BaseURL)
	}
	if !cfg.Analysis.Enabled || cfg.Analysis.Timeout != 5*time.Second {
		t.Errorf("unexpected analysis config %+v", cfg.Analysis)
	}
}

func TestLoad_DefaultsPreserved(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default openai base url, got %q", cfg.Providers.OpenAI.BaseURL)
	}
	if cfg.Providers.HuggingFace.Model != "mistralai/Mistral-7B-Instruct-v0.3" {
		t.Errorf("expected default huggingface model, got %q", cfg.Providers.HuggingFace.Model)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected default metrics path, got %q", cfg.Metrics.Path)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_VLLM_URL", "http://expanded:8000/v1")
	path := writeConfig(t, `
providers:
  local_vllm:
    base_url: "${TEST_VLLM_URL}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.LocalVLLM.BaseURL != "http://expanded:8000/v1" {
		t.Errorf("expected env expansion, got %q", cfg.Providers.LocalVLLM.BaseURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate_BadPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := Defaults()
		cfg.Server.Port = port
		if err := cfg.Validate(); !errors.Is(err, core.ErrConfigInvalid) {
			t.Errorf("port %d: expected invalid config error, got %v", port, err)
		}
	}
}

func TestValidate_MissingDSN(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.DSN = ""
	if err := cfg.Validate(); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected missing config error, got %v", err)
	}
}

func TestValidate_S3WithoutBucket(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Archive.Type = "s3"
	if err := cfg.Validate(); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected missing config error, got %v", err)
	}

	cfg.Storage.Archive.S3.Bucket = "transcripts"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid with bucket set, got %v", err)
	}
}

func TestValidate_UnknownArchiveType(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Archive.Type = "tape"
	if err := cfg.Validate(); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

func TestValidate_MissingLocalVLLMURL(t *testing.T) {
	cfg := Defaults()
	cfg.Providers.LocalVLLM.BaseURL = ""
	if err := cfg.Validate(); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected missing config error, got %v", err)
	}
}

func TestValidate_AnalysisEnabledWithoutURL(t *testing.T) {
	cfg := Defaults()
	cfg.Analysis.Enabled = true
	cfg.Analysis.URL = ""
	if err := cfg.Validate(); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected missing config error, got %v", err)
	}
}
