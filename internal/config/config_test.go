package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"scrooge/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	// Keep the home directory .env probe away from the developer's real one
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"GROQ_API_KEY",
		"SCROOGE_MODEL",
		"SCROOGE_BASE_URL",
		"SCROOGE_TEMPERATURE",
		"SCROOGE_MAX_ATTEMPTS",
		"SCROOGE_RETRY_DELAY",
		"SCROOGE_REQUEST_TIMEOUT",
		"SCROOGE_DATA_DIR",
		"SCROOGE_CACHE",
		"SCROOGE_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	settings := Load()

	if settings.Model != DefaultModel {
		t.Errorf("expected model '%s', got '%s'", DefaultModel, settings.Model)
	}
	if settings.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL '%s', got '%s'", DefaultBaseURL, settings.BaseURL)
	}
	if settings.Temperature != DefaultTemperature {
		t.Errorf("expected temperature %v, got %v", DefaultTemperature, settings.Temperature)
	}
	if settings.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected %d attempts, got %d", DefaultMaxAttempts, settings.MaxAttempts)
	}
	if settings.RetryDelay != DefaultRetryDelay {
		t.Errorf("expected retry delay %v, got %v", DefaultRetryDelay, settings.RetryDelay)
	}
	if settings.DataDir != DefaultDataDir {
		t.Errorf("expected data dir '%s', got '%s'", DefaultDataDir, settings.DataDir)
	}
	if !settings.CacheEnabled {
		t.Error("cache should be enabled by default")
	}
	if settings.APIKey != "" {
		t.Errorf("expected empty API key, got '%s'", settings.APIKey)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_test_key")
	t.Setenv("SCROOGE_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("SCROOGE_TEMPERATURE", "0.7")
	t.Setenv("SCROOGE_MAX_ATTEMPTS", "3")
	t.Setenv("SCROOGE_RETRY_DELAY", "500ms")
	t.Setenv("SCROOGE_DATA_DIR", "/tmp/scrooge-data")
	t.Setenv("SCROOGE_CACHE", "false")

	settings := Load()

	if settings.APIKey != "gsk_test_key" {
		t.Errorf("expected API key from environment, got '%s'", settings.APIKey)
	}
	if settings.Model != "llama-3.3-70b-versatile" {
		t.Errorf("expected overridden model, got '%s'", settings.Model)
	}
	if settings.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", settings.Temperature)
	}
	if settings.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", settings.MaxAttempts)
	}
	if settings.RetryDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms retry delay, got %v", settings.RetryDelay)
	}
	if settings.DataDir != "/tmp/scrooge-data" {
		t.Errorf("expected overridden data dir, got '%s'", settings.DataDir)
	}
	if settings.CacheEnabled {
		t.Error("cache should be disabled")
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCROOGE_TEMPERATURE", "hot")
	t.Setenv("SCROOGE_MAX_ATTEMPTS", "many")
	t.Setenv("SCROOGE_CACHE", "maybe")

	settings := Load()

	if settings.Temperature != DefaultTemperature {
		t.Errorf("malformed temperature should fall back, got %v", settings.Temperature)
	}
	if settings.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("malformed attempts should fall back, got %d", settings.MaxAttempts)
	}
	if !settings.CacheEnabled {
		t.Error("malformed cache flag should fall back to enabled")
	}
}

func TestLoadDurationBareSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCROOGE_RETRY_DELAY", "5")

	settings := Load()

	if settings.RetryDelay != 5*time.Second {
		t.Errorf("bare number should parse as seconds, got %v", settings.RetryDelay)
	}
}

func TestSettingsValidation(t *testing.T) {
	valid := func() *Settings {
		return &Settings{
			Model:          DefaultModel,
			BaseURL:        DefaultBaseURL,
			Temperature:    0.3,
			MaxAttempts:    2,
			RetryDelay:     2 * time.Second,
			RequestTimeout: 60 * time.Second,
			DataDir:        "data",
		}
	}

	tests := []struct {
		name        string
		mutate      func(s *Settings)
		expectError bool
	}{
		{
			name:        "valid settings",
			mutate:      func(s *Settings) {},
			expectError: false,
		},
		{
			name:        "empty model",
			mutate:      func(s *Settings) { s.Model = "" },
			expectError: true,
		},
		{
			name:        "empty base URL",
			mutate:      func(s *Settings) { s.BaseURL = "" },
			expectError: true,
		},
		{
			name:        "temperature too high",
			mutate:      func(s *Settings) { s.Temperature = 2.5 },
			expectError: true,
		},
		{
			name:        "negative temperature",
			mutate:      func(s *Settings) { s.Temperature = -0.1 },
			expectError: true,
		},
		{
			name:        "zero attempts",
			mutate:      func(s *Settings) { s.MaxAttempts = 0 },
			expectError: true,
		},
		{
			name:        "zero timeout",
			mutate:      func(s *Settings) { s.RequestTimeout = 0 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := valid()
			tt.mutate(settings)
			err := settings.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !errors.IsErrorType(err, errors.ConfigErrorType) {
					t.Errorf("expected config error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplyFileTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "scrooge.toml")
	content := `model = "llama-3.3-70b-versatile"
temperature = 0.7
cache = false
retry_delay = "5s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	settings := Load()
	if err := settings.ApplyFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Model != "llama-3.3-70b-versatile" {
		t.Errorf("expected model from file, got '%s'", settings.Model)
	}
	if settings.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", settings.Temperature)
	}
	if settings.CacheEnabled {
		t.Error("cache should be disabled by file")
	}
	if settings.RetryDelay != 5*time.Second {
		t.Errorf("expected 5s retry delay, got %v", settings.RetryDelay)
	}
	// Values absent from the file keep their defaults
	if settings.BaseURL != DefaultBaseURL {
		t.Errorf("base URL should keep default, got '%s'", settings.BaseURL)
	}
	if settings.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("attempts should keep default, got %d", settings.MaxAttempts)
	}
}

func TestApplyFileYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "scrooge.yaml")
	content := `model: llama-3.3-70b-versatile
base_url: https://example.test/v1
max_attempts: 4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	settings := Load()
	if err := settings.ApplyFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Model != "llama-3.3-70b-versatile" {
		t.Errorf("expected model from file, got '%s'", settings.Model)
	}
	if settings.BaseURL != "https://example.test/v1" {
		t.Errorf("expected base URL from file, got '%s'", settings.BaseURL)
	}
	if settings.MaxAttempts != 4 {
		t.Errorf("expected 4 attempts, got %d", settings.MaxAttempts)
	}
}

func TestApplyFileJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "scrooge.json")
	content := `{"model": "llama-3.3-70b-versatile", "data_dir": "artifacts", "cache_ttl": "30m"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	settings := Load()
	if err := settings.ApplyFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Model != "llama-3.3-70b-versatile" {
		t.Errorf("expected model from file, got '%s'", settings.Model)
	}
	if settings.DataDir != "artifacts" {
		t.Errorf("expected data dir from file, got '%s'", settings.DataDir)
	}
	if settings.CacheTTL != 30*time.Minute {
		t.Errorf("expected 30m cache TTL, got %v", settings.CacheTTL)
	}
}

func TestApplyFileErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	badDuration := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(badDuration, []byte(`retry_delay = "fast"`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	unsupported := filepath.Join(dir, "scrooge.ini")
	if err := os.WriteFile(unsupported, []byte("model=x"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	malformed := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(malformed, []byte("model: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.toml")},
		{name: "directory instead of file", path: dir},
		{name: "unsupported format", path: unsupported},
		{name: "invalid duration", path: badDuration},
		{name: "malformed yaml", path: malformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := Load()
			err := settings.ApplyFile(tt.path)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !errors.IsErrorType(err, errors.ConfigErrorType) {
				t.Errorf("expected config error, got %v", err)
			}
		})
	}
}
