package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type StorageConfig struct {
	DSN     string        `mapstructure:"dsn"`
	Archive ArchiveConfig `mapstructure:"archive"`
}

// ArchiveConfig selects the transcript archive backend.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// ProvidersConfig holds the wire endpoints for each backend. Only the local
// vLLM base URL is expected to vary per deployment; the hosted endpoints are
// fixed but kept here so tests can point clients at stub servers.
type ProvidersConfig struct {
	OpenAI      EndpointConfig `mapstructure:"openai"`
	DeepSeek    EndpointConfig `mapstructure:"deepseek"`
	LocalVLLM   EndpointConfig `mapstructure:"local_vllm"`
	HuggingFace EndpointConfig `mapstructure:"huggingface"`
}

type EndpointConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type AnalysisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Storage: StorageConfig{
			DSN: "llmadapter.db",
			Archive: ArchiveConfig{
				Type: "localfs",
				Path: "archive",
			},
		},
		Providers: ProvidersConfig{
			OpenAI: EndpointConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o",
			},
			DeepSeek: EndpointConfig{
				BaseURL: "https://api.deepseek.com",
				Model:   "deepseek-chat",
			},
			LocalVLLM: EndpointConfig{
				BaseURL: "http://localhost:8000/v1",
				Model:   "Qwen/Qwen2.5-7B-Instruct",
			},
			HuggingFace: EndpointConfig{
				BaseURL: "https://api-inference.huggingface.co",
				Model:   "mistralai/Mistral-7B-Instruct-v0.3",
			},
		},
		Analysis: AnalysisConfig{
			Enabled: false,
			URL:     "http://localhost:8001",
			Timeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Storage.DSN == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("storage dsn is required"))
	}

	switch c.Storage.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Storage.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Storage.Archive.Type))
	}

	if c.Providers.LocalVLLM.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("local_vllm base_url is required"))
	}

	if c.Analysis.Enabled && c.Analysis.URL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("analysis url required when analysis is enabled"))
	}

	return nil
}
