package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration. It is loaded once at startup
// and passed into components by value; nothing reads ambient process state
// after that.
type Config struct {
	Model     ModelConfig     `koanf:"model"`
	Segmenter SegmenterConfig `koanf:"segmenter"`
	Provider  string          `koanf:"provider"` // "openai" or "azure"
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Azure     AzureConfig     `koanf:"azure_openai"`
	Extract   ExtractConfig   `koanf:"extract"`
	Retry     RetryConfig     `koanf:"retry"`
	Storage   StorageConfig   `koanf:"storage"`
	Results   ResultsConfig   `koanf:"results"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ModelConfig locates the classifier artifact and its training inputs.
type ModelConfig struct {
	Path        string  `koanf:"path"`       // serialized model artifact
	TrainData   string  `koanf:"train_data"` // directory of labeled training data
	Mapping     string  `koanf:"mapping"`    // clause name -> id mapping (data_mapping.json)
	Fields      string  `koanf:"fields"`     // field definitions (data_mapping_fields.json)
	Kernel      string  `koanf:"kernel"`
	C           float64 `koanf:"c"`
	Gamma       float64 `koanf:"gamma"` // <= 0 means "scale"
	MaxFeatures int     `koanf:"max_features"`
}

type SegmenterConfig struct {
	MinLength int `koanf:"min_length"`
}

type OpenAIConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	GPTModel    string        `koanf:"gpt_model"`
	Temperature float32       `koanf:"temperature"`
	Timeout     time.Duration `koanf:"timeout"`
}

// AzureConfig mirrors the azure_openai section: a default model plus
// per-model endpoint/deployment entries.
type AzureConfig struct {
	DefaultModel string                      `koanf:"default_model"`
	APIVersion   string                      `koanf:"api_version"`
	Models       map[string]AzureModelConfig `koanf:"models"`
}

type AzureModelConfig struct {
	Endpoint   string `koanf:"endpoint"`
	APIKey     string `koanf:"api_key"`
	Deployment string `koanf:"deployment"`
	APIVersion string `koanf:"api_version"`
}

type ExtractConfig struct {
	Enabled       bool `koanf:"enabled"`
	BatchSize     int  `koanf:"batch_size"`
	MatchExact    bool `koanf:"match_exact"` // default false: case-insensitive provenance matching
	MaxPromptText int  `koanf:"max_prompt_text"`
}

type RetryConfig struct {
	Attempts    int           `koanf:"attempts"`
	BackoffBase time.Duration `koanf:"backoff_base"`
	Timeout     time.Duration `koanf:"timeout"`
}

type StorageConfig struct {
	Type  string             `koanf:"type"` // "local" or "minio"
	Local LocalStorageConfig `koanf:"local"`
	Minio MinioStorageConfig `koanf:"minio"`
}

type LocalStorageConfig struct {
	Path string `koanf:"path"`
}

type MinioStorageConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

type ResultsConfig struct {
	Driver   string `koanf:"driver"` // "sqlite" or "postgres", empty disables persistence
	SQLite   string `koanf:"sqlite"` // file path or ":memory:"
	Postgres string `koanf:"postgres"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "text"
}

const envPrefix = "LEASE_"

// DefaultConfig returns the built-in defaults, matching the shipped
// config.yaml sample.
func DefaultConfig() Config {
	return Config{
		Model: ModelConfig{
			Path:        "lease_model.bin",
			TrainData:   "test_data",
			Mapping:     "data_mapping/data_mapping.json",
			Fields:      "data_mapping/data_mapping_fields.json",
			Kernel:      "rbf",
			C:           1.0,
			Gamma:       0, // scale
			MaxFeatures: 5000,
		},
		Segmenter: SegmenterConfig{MinLength: 30},
		Provider:  "openai",
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			GPTModel:    "gpt-4o-mini",
			Temperature: 0,
			Timeout:     45 * time.Second,
		},
		Azure: AzureConfig{
			DefaultModel: "gpt-4.1",
			APIVersion:   "2024-02-15-preview",
		},
		Extract: ExtractConfig{
			Enabled:       true,
			BatchSize:     10,
			MaxPromptText: 4000,
		},
		Retry: RetryConfig{
			Attempts:    3,
			BackoffBase: 500 * time.Millisecond,
			Timeout:     2 * time.Minute,
		},
		Storage: StorageConfig{
			Type:  "local",
			Local: LocalStorageConfig{Path: "mnt/cp-files"},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// LoadConfig loads configuration from a YAML file (if path is non-empty and
// the file exists), then applies LEASE_* environment overrides.
//
// Environment variables map section_key: LEASE_OPENAI_API_KEY -> openai.api_key.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file: %w", err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return cfg, fmt.Errorf("load env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// envToKey maps LEASE_OPENAI_API_KEY to openai.api_key: the first underscore
// separates the section, the remainder stays underscored.
func envToKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i] + "." + s[i+1:]
	}
	return s
}

// Validate checks the parts of the config the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Model.Path == "" {
		return NewAppError("CONFIG_ERROR", "model.path is required", ErrInvalidInput)
	}
	if c.Segmenter.MinLength < 0 {
		return NewAppError("CONFIG_ERROR", "segmenter.min_length must be >= 0", ErrInvalidInput)
	}
	switch c.Model.Kernel {
	case "", "linear", "rbf", "poly", "sigmoid":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown model kernel %q", c.Model.Kernel), ErrInvalidInput)
	}
	switch c.Results.Driver {
	case "", "sqlite", "postgres":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown results driver %q", c.Results.Driver), ErrInvalidInput)
	}
	switch c.Provider {
	case "openai", "azure":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown provider %q", c.Provider), ErrInvalidInput)
	}
	if c.Extract.Enabled {
		if c.Provider == "openai" && c.OpenAI.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "openai.api_key is required when extraction is enabled", ErrInvalidInput)
		}
	}
	switch c.Storage.Type {
	case "", "local":
	case "minio":
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			return NewAppError("CONFIG_ERROR", "storage.minio.endpoint and bucket are required", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown storage type %q", c.Storage.Type), ErrInvalidInput)
	}
	return nil
}
