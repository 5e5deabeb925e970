package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client and emulator server configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Retry     RetryConfig     `yaml:"retry"`
	Poll      PollConfig      `yaml:"poll"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Emulator  EmulatorConfig  `yaml:"emulator"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings of the server.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// GatewayConfig holds the client connection settings.
type GatewayConfig struct {
	Host       string  `yaml:"host"`
	Port       int     `yaml:"port"`
	APIKey     string  `yaml:"api_key"`
	TimeoutSec int     `yaml:"timeout_sec"` // per call
	RateLimit  float64 `yaml:"rate_limit"`  // calls per second, 0 = unlimited
	Burst      int     `yaml:"burst"`
}

// Address returns the base URL of the gateway.
func (g GatewayConfig) Address() string {
	return "http://" + net.JoinHostPort(g.Host, strconv.Itoa(g.Port))
}

// RetryConfig holds the retry policy.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	IntervalMs  int `yaml:"interval_ms"`
	TimeoutMs   int `yaml:"timeout_ms"` // 0 = unbounded
}

// PollConfig holds the sync wait policy.
type PollConfig struct {
	IntervalMs       int    `yaml:"interval_ms"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	MissingPartition string `yaml:"missing_partition"` // continue (default), abort
}

// DatabaseConfig holds segment store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	MemoryEntries    int      `yaml:"memory_entries"`
}

// EmbeddingConfig holds text embedding settings of the emulator.
type EmbeddingConfig struct {
	Provider     string       `yaml:"provider"` // hash (default), openai
	APIKey       string       `yaml:"api_key"`
	BaseURL      string       `yaml:"base_url"`
	Model        string       `yaml:"model"`
	Dimensions   int          `yaml:"dimensions"`
	CacheEntries int          `yaml:"cache_entries"`
	Budget       BudgetConfig `yaml:"budget"`
}

// BudgetConfig caps embedding tokens per UTC day and month. Zero means unlimited.
type BudgetConfig struct {
	DailyTokens   int64  `yaml:"daily_tokens"`
	MonthlyTokens int64  `yaml:"monthly_tokens"`
	Action        string `yaml:"action"` // warn (default), reject
}

// EmulatorConfig controls how many status polls asynchronous operations take
// to complete on the emulator.
type EmulatorConfig struct {
	LoadSteps  int `yaml:"load_steps"`
	IndexSteps int `yaml:"index_steps"`
	FlushSteps int `yaml:"flush_steps"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML with ${VAR} substitution, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 18880
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Gateway.Host == "" {
		c.Gateway.Host = "localhost"
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 18880
	}
	if c.Gateway.TimeoutSec <= 0 {
		c.Gateway.TimeoutSec = 30
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.IntervalMs <= 0 {
		c.Retry.IntervalMs = 500
	}
	if c.Retry.TimeoutMs == 0 {
		c.Retry.TimeoutMs = 10000
	}
	if c.Poll.IntervalMs <= 0 {
		c.Poll.IntervalMs = 500
	}
	if c.Poll.TimeoutMs <= 0 {
		c.Poll.TimeoutMs = 60000
	}
	if c.Poll.MissingPartition == "" {
		c.Poll.MissingPartition = "continue"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "vsearch:"
	}
	if c.Database.MemoryEntries <= 0 {
		c.Database.MemoryEntries = 4096
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "hash"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 64
	}
	if c.Embedding.CacheEntries <= 0 {
		c.Embedding.CacheEntries = 1024
	}
	if c.Embedding.Budget.Action == "" {
		c.Embedding.Budget.Action = "warn"
	}
	if c.Emulator.LoadSteps <= 0 {
		c.Emulator.LoadSteps = 2
	}
	if c.Emulator.IndexSteps <= 0 {
		c.Emulator.IndexSteps = 2
	}
	if c.Emulator.FlushSteps <= 0 {
		c.Emulator.FlushSteps = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Gateway.Port < 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port must be between 0 and 65535, got %d", c.Gateway.Port)
	}
	if c.Gateway.RateLimit < 0 {
		return fmt.Errorf("gateway.rate_limit cannot be negative")
	}
	if c.Retry.TimeoutMs < 0 {
		return fmt.Errorf("retry.timeout_ms cannot be negative")
	}
	switch c.Poll.MissingPartition {
	case "continue", "abort":
	default:
		return fmt.Errorf("poll.missing_partition must be \"continue\" or \"abort\", got %q", c.Poll.MissingPartition)
	}
	switch c.Database.Driver {
	case "memory":
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be \"memory\" or \"redis\", got %q", c.Database.Driver)
	}
	switch c.Embedding.Provider {
	case "hash":
	case "openai":
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", c.Embedding.Provider)
		}
	default:
		return fmt.Errorf("embedding.provider must be \"hash\" or \"openai\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Budget.DailyTokens < 0 || c.Embedding.Budget.MonthlyTokens < 0 {
		return fmt.Errorf("embedding.budget limits cannot be negative")
	}
	switch c.Embedding.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("embedding.budget.action must be \"warn\" or \"reject\", got %q", c.Embedding.Budget.Action)
	}
	return nil
}

// Interval returns the retry interval.
func (c RetryConfig) Interval() time.Duration { return time.Duration(c.IntervalMs) * time.Millisecond }

// Timeout returns the retry budget.
func (c RetryConfig) Timeout() time.Duration { return time.Duration(c.TimeoutMs) * time.Millisecond }

// Interval returns the poll interval.
func (c PollConfig) Interval() time.Duration { return time.Duration(c.IntervalMs) * time.Millisecond }

// Timeout returns the poll budget.
func (c PollConfig) Timeout() time.Duration { return time.Duration(c.TimeoutMs) * time.Millisecond }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
