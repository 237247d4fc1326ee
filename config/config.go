package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"drawdown/domain/entities"
)

// Config holds all application configuration
type Config struct {
	// Path of the YAML settings file; empty means stock defaults
	SettingsFile string

	// Simulation settings loaded from the file plus env overrides
	Settings entities.Settings

	// Runner configuration
	AutoPlay    bool   // drive player turns automatically until game over
	LogLevel    string // logrus level name
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// load loads configuration from the settings file and environment variables
func load() (*Config, error) {
	config := &Config{
		SettingsFile: os.Getenv("SETTINGS_FILE"),
		Settings:     entities.DefaultSettings(),
		AutoPlay:     true,
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:  getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if config.SettingsFile != "" {
		settings, err := LoadSettingsFile(config.SettingsFile)
		if err != nil {
			return nil, err
		}
		config.Settings = settings
	}

	applyEnvOverrides(&config.Settings)
	config.Settings.Normalize()

	if autoPlay := os.Getenv("AUTO_PLAY"); autoPlay != "" {
		if parsed, err := strconv.ParseBool(autoPlay); err == nil {
			config.AutoPlay = parsed
		}
	}

	return config, nil
}

// LoadSettingsFile parses a YAML simulation settings file. Missing fields
// keep their defaults; out-of-range values are clamped, not rejected.
func LoadSettingsFile(path string) (entities.Settings, error) {
	settings := entities.DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file: %w", err)
	}

	settings.Normalize()
	return settings, nil
}

// applyEnvOverrides lets individual simulation parameters be overridden
// without editing the settings file.
func applyEnvOverrides(settings *entities.Settings) {
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseFloat(balance, 64); err == nil {
			settings.StartingBalance = parsed
		}
	}
	if probability := os.Getenv("WIN_PROBABILITY"); probability != "" {
		if parsed, err := strconv.ParseFloat(probability, 64); err == nil {
			settings.WinProbability = parsed
		}
	}
	if bots := os.Getenv("BOT_COUNT"); bots != "" {
		if parsed, err := strconv.Atoi(bots); err == nil {
			settings.BotCount = parsed
		}
	}
	if maxTurns := os.Getenv("MAX_TURNS"); maxTurns != "" {
		if parsed, err := strconv.Atoi(maxTurns); err == nil {
			settings.MaxTurns = parsed
		}
	}
	if delay := os.Getenv("TURN_DELAY_MS"); delay != "" {
		if parsed, err := strconv.Atoi(delay); err == nil {
			settings.TurnDelay = time.Duration(parsed) * time.Millisecond
		}
	}
	if batch := os.Getenv("BATCH_ENABLED"); batch != "" {
		if parsed, err := strconv.ParseBool(batch); err == nil {
			settings.BatchRoll.Enabled = parsed
		}
	}
	if size := os.Getenv("BATCH_SIZE"); size != "" {
		if parsed, err := strconv.Atoi(size); err == nil {
			settings.BatchRoll.Size = parsed
		}
	}
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Settings:    entities.DefaultSettings(),
		AutoPlay:    false,
		LogLevel:    "error",
		Environment: "test",
	}
}
