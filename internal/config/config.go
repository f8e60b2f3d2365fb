// Package config resolves runtime settings from environment variables,
// optional .env files and an optional configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"scrooge/internal/errors"
)

// Default values
const (
	DefaultModel          = "llama-3.1-8b-instant"
	DefaultBaseURL        = "https://api.groq.com/openai/v1"
	DefaultTemperature    = 0.3
	DefaultMaxAttempts    = 2
	DefaultRetryDelay     = 2 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	DefaultDataDir        = "data"
	DefaultCacheTTL       = 15 * time.Minute
)

// Settings holds the resolved runtime configuration.
type Settings struct {
	APIKey         string
	Model          string
	BaseURL        string
	Temperature    float64
	MaxAttempts    int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
	DataDir        string
	CacheEnabled   bool
	CacheTTL       time.Duration
}

// Load resolves settings from .env files and environment variables.
// Malformed environment values fall back to defaults; Validate catches
// combinations that cannot work.
func Load() *Settings {
	for _, path := range envFilePaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	return &Settings{
		APIKey:         os.Getenv("GROQ_API_KEY"),
		Model:          getEnvString("SCROOGE_MODEL", DefaultModel),
		BaseURL:        getEnvString("SCROOGE_BASE_URL", DefaultBaseURL),
		Temperature:    getEnvFloat("SCROOGE_TEMPERATURE", DefaultTemperature),
		MaxAttempts:    getEnvInt("SCROOGE_MAX_ATTEMPTS", DefaultMaxAttempts),
		RetryDelay:     getEnvDuration("SCROOGE_RETRY_DELAY", DefaultRetryDelay),
		RequestTimeout: getEnvDuration("SCROOGE_REQUEST_TIMEOUT", DefaultRequestTimeout),
		DataDir:        getEnvString("SCROOGE_DATA_DIR", DefaultDataDir),
		CacheEnabled:   getEnvBool("SCROOGE_CACHE", true),
		CacheTTL:       getEnvDuration("SCROOGE_CACHE_TTL", DefaultCacheTTL),
	}
}

// Validate checks that the settings describe a runnable configuration.
// The API key is not checked here: commands that never call the model
// work without one.
func (s *Settings) Validate() error {
	if s.Model == "" {
		return errors.ConfigError("model name cannot be empty").
			WithSuggestion("Set SCROOGE_MODEL or remove the empty override")
	}
	if s.BaseURL == "" {
		return errors.ConfigError("API base URL cannot be empty").
			WithSuggestion("Set SCROOGE_BASE_URL or remove the empty override")
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return errors.ConfigErrorf("temperature must be between 0 and 2, got %v", s.Temperature)
	}
	if s.MaxAttempts < 1 {
		return errors.ConfigErrorf("max attempts must be at least 1, got %d", s.MaxAttempts)
	}
	if s.RequestTimeout <= 0 {
		return errors.ConfigErrorf("request timeout must be positive, got %v", s.RequestTimeout)
	}
	return nil
}

// fileSettings mirrors the subset of Settings that may come from a
// configuration file. The API key deliberately cannot: it stays in the
// environment.
type fileSettings struct {
	Model          string   `toml:"model" yaml:"model" json:"model"`
	BaseURL        string   `toml:"base_url" yaml:"base_url" json:"base_url"`
	Temperature    *float64 `toml:"temperature" yaml:"temperature" json:"temperature"`
	MaxAttempts    *int     `toml:"max_attempts" yaml:"max_attempts" json:"max_attempts"`
	RetryDelay     string   `toml:"retry_delay" yaml:"retry_delay" json:"retry_delay"`
	RequestTimeout string   `toml:"request_timeout" yaml:"request_timeout" json:"request_timeout"`
	DataDir        string   `toml:"data_dir" yaml:"data_dir" json:"data_dir"`
	CacheEnabled   *bool    `toml:"cache" yaml:"cache" json:"cache"`
	CacheTTL       string   `toml:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
}

// ApplyFile overlays values from a TOML, YAML or JSON configuration file
// onto the settings. Values absent from the file keep their current value.
func (s *Settings) ApplyFile(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return errors.ConfigErrorWithCause("failed to access configuration file", err).
			WithContext("file_path", filePath).
			WithSuggestion("Check that the file exists and is readable")
	}
	if info.IsDir() {
		return errors.ConfigErrorf("%s is a directory, not a file", filePath).
			WithContext("file_path", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return errors.ConfigErrorWithCause("failed to read configuration file", err).
			WithContext("file_path", filePath)
	}

	var file fileSettings
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return errors.ConfigErrorWithCause("failed to parse TOML configuration", err).
				WithContext("file_path", filePath)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return errors.ConfigErrorWithCause("failed to parse YAML configuration", err).
				WithContext("file_path", filePath)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return errors.ConfigErrorWithCause("failed to parse JSON configuration", err).
				WithContext("file_path", filePath)
		}
	default:
		return errors.ConfigErrorf("unsupported configuration format: %s", ext).
			WithContext("file_path", filePath).
			WithSuggestion("Use a .toml, .yaml or .json configuration file")
	}

	return s.apply(&file, filePath)
}

func (s *Settings) apply(file *fileSettings, filePath string) error {
	if file.Model != "" {
		s.Model = file.Model
	}
	if file.BaseURL != "" {
		s.BaseURL = file.BaseURL
	}
	if file.Temperature != nil {
		s.Temperature = *file.Temperature
	}
	if file.MaxAttempts != nil {
		s.MaxAttempts = *file.MaxAttempts
	}
	if file.DataDir != "" {
		s.DataDir = file.DataDir
	}
	if file.CacheEnabled != nil {
		s.CacheEnabled = *file.CacheEnabled
	}

	for _, d := range []struct {
		raw    string
		target *time.Duration
		key    string
	}{
		{file.RetryDelay, &s.RetryDelay, "retry_delay"},
		{file.RequestTimeout, &s.RequestTimeout, "request_timeout"},
		{file.CacheTTL, &s.CacheTTL, "cache_ttl"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return errors.ConfigErrorf("invalid duration for %s: %s", d.key, d.raw).
				WithContext("file_path", filePath).
				WithSuggestion("Use a Go duration such as 2s, 500ms or 15m")
		}
		*d.target = parsed
	}
	return nil
}

// envFilePaths returns the locations probed for a .env file, in order.
func envFilePaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "scrooge", ".env"))
	}
	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the
// default. Accepts values like "30s", "1m", "500ms", or bare seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
