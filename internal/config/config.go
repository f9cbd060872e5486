package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Cleaning policies for rows whose date cannot be parsed.
const (
	PolicyLenient = "lenient" // drop offending rows, warn
	PolicyStrict  = "strict"  // abort the whole request
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Gemini   GeminiConfig   `yaml:"gemini" envconfig:"GEMINI"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/mediapulse.log"`
}

// PipelineConfig controls the cleaning and aggregation pipeline
type PipelineConfig struct {
	CleaningPolicy string `yaml:"cleaning_policy" envconfig:"CLEANING_POLICY" default:"lenient" validate:"oneof=lenient strict"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`
}

// GeminiConfig configures the generative insight collaborator.
// An empty APIKey disables the collaborator; insights fall back to
// locally templated phrasing.
type GeminiConfig struct {
	APIKey   string        `yaml:"api_key" envconfig:"API_KEY"`
	Model    string        `yaml:"model" envconfig:"MODEL" default:"gemini-2.0-flash"`
	Endpoint string        `yaml:"endpoint" envconfig:"ENDPOINT" default:"https://generativelanguage.googleapis.com/v1beta/models"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"20s" validate:"gt=0"`
}

// envPrefix is the prefix for all environment variable keys.
const envPrefix = "MEDIAPULSE"

// Load loads configuration from environment variables and an optional config file
func Load() (*Config, error) {
	return LoadFromFile(configFilePath())
}

// LoadFromFile loads configuration from environment variables merged with
// an optional YAML file. Explicitly set environment variables take
// precedence; file values override struct defaults.
func LoadFromFile(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := loadFromYAML(path)
			if err != nil {
				return nil, err
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromYAML loads configuration from a YAML file
func loadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// mergeConfigs layers the file config under the env config. A file value
// applies unless the matching environment variable was set explicitly;
// fields the file leaves at their zero value keep the env or default value.
// RateLimit.Enabled stays env-only: a false in YAML cannot be told apart
// from an omitted field.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if v := fileConfig.Server.Port; v != 0 && !envSet("SERVER_PORT") {
		envConfig.Server.Port = v
	}
	if v := fileConfig.Server.ReadTimeout; v != 0 && !envSet("SERVER_READ_TIMEOUT") {
		envConfig.Server.ReadTimeout = v
	}
	if v := fileConfig.Server.WriteTimeout; v != 0 && !envSet("SERVER_WRITE_TIMEOUT") {
		envConfig.Server.WriteTimeout = v
	}
	if v := fileConfig.Server.IdleTimeout; v != 0 && !envSet("SERVER_IDLE_TIMEOUT") {
		envConfig.Server.IdleTimeout = v
	}
	if v := fileConfig.Server.ShutdownTimeout; v != 0 && !envSet("SERVER_SHUTDOWN_TIMEOUT") {
		envConfig.Server.ShutdownTimeout = v
	}
	if v := fileConfig.Server.RateLimit.RPS; v != 0 && !envSet("SERVER_RATE_LIMIT_RPS") {
		envConfig.Server.RateLimit.RPS = v
	}
	if v := fileConfig.Server.RateLimit.Burst; v != 0 && !envSet("SERVER_RATE_LIMIT_BURST") {
		envConfig.Server.RateLimit.Burst = v
	}
	if v := fileConfig.Logging.Level; v != "" && !envSet("LOGGING_LEVEL") {
		envConfig.Logging.Level = v
	}
	if v := fileConfig.Logging.Format; v != "" && !envSet("LOGGING_FORMAT") {
		envConfig.Logging.Format = v
	}
	if v := fileConfig.Logging.Output; v != "" && !envSet("LOGGING_OUTPUT") {
		envConfig.Logging.Output = v
	}
	if v := fileConfig.Logging.FilePath; v != "" && !envSet("LOGGING_FILE_PATH") {
		envConfig.Logging.FilePath = v
	}
	if v := fileConfig.Pipeline.CleaningPolicy; v != "" && !envSet("PIPELINE_CLEANING_POLICY") {
		envConfig.Pipeline.CleaningPolicy = v
	}
	if v := fileConfig.Pipeline.MaxUploadBytes; v != 0 && !envSet("PIPELINE_MAX_UPLOAD_BYTES") {
		envConfig.Pipeline.MaxUploadBytes = v
	}
	if v := fileConfig.Gemini.APIKey; v != "" && !envSet("GEMINI_API_KEY") {
		envConfig.Gemini.APIKey = v
	}
	if v := fileConfig.Gemini.Model; v != "" && !envSet("GEMINI_MODEL") {
		envConfig.Gemini.Model = v
	}
	if v := fileConfig.Gemini.Endpoint; v != "" && !envSet("GEMINI_ENDPOINT") {
		envConfig.Gemini.Endpoint = v
	}
	if v := fileConfig.Gemini.Timeout; v != 0 && !envSet("GEMINI_TIMEOUT") {
		envConfig.Gemini.Timeout = v
	}
	return envConfig
}

// envSet reports whether the prefixed environment variable is present.
func envSet(key string) bool {
	_, ok := os.LookupEnv(envPrefix + "_" + key)
	return ok
}

// GeminiEnabled reports whether the generative collaborator is configured.
func (c *Config) GeminiEnabled() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// validate validates the configuration using struct tags
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if ok := isValidationErrors(err, &errs); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("invalid value for %s: %q", first.Namespace(), fmt.Sprintf("%v", first.Value()))
		}
		return err
	}
	return nil
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	if errs, ok := err.(validator.ValidationErrors); ok {
		*target = errs
		return true
	}
	return false
}

// configFilePath returns the config file path, overridable via env
func configFilePath() string {
	if path := os.Getenv("MEDIAPULSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
