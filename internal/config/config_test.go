package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidMissingPartition(t *testing.T) {
	cfg := validConfig()
	cfg.Poll.MissingPartition = "skip"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid missing_partition")
	}
}

func TestValidate_ValidMissingPartition(t *testing.T) {
	for _, mode := range []string{"continue", "abort"} {
		cfg := validConfig()
		cfg.Poll.MissingPartition = mode
		if err := cfg.Validate(); err != nil {
			t.Errorf("missing_partition=%q: unexpected error: %v", mode, err)
		}
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"http zero", func(c *Config) { c.HTTP.Port = 0 }},
		{"http too large", func(c *Config) { c.HTTP.Port = 70000 }},
		{"gateway negative", func(c *Config) { c.Gateway.Port = -1 }},
		{"gateway too large", func(c *Config) { c.Gateway.Port = 65536 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mod(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis without addrs")
	}
	cfg.Database.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_OpenAIRequiresModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openai without model")
	}
}

func TestValidate_Budget(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default warn", func(*Config) {}, false},
		{"reject", func(c *Config) { c.Embedding.Budget.Action = "reject" }, false},
		{"unknown action", func(c *Config) { c.Embedding.Budget.Action = "block" }, true},
		{"negative daily", func(c *Config) { c.Embedding.Budget.DailyTokens = -1 }, true},
		{"negative monthly", func(c *Config) { c.Embedding.Budget.MonthlyTokens = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Gateway.Host != "localhost" {
		t.Errorf("Gateway.Host = %q, want localhost", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18880 {
		t.Errorf("Gateway.Port = %d, want 18880", cfg.Gateway.Port)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Retry.MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Interval() != 500*time.Millisecond {
		t.Errorf("Retry.Interval = %v, want 500ms", cfg.Retry.Interval())
	}
	if cfg.Retry.Timeout() != 10*time.Second {
		t.Errorf("Retry.Timeout = %v, want 10s", cfg.Retry.Timeout())
	}
	if cfg.Poll.Timeout() != time.Minute {
		t.Errorf("Poll.Timeout = %v, want 1m", cfg.Poll.Timeout())
	}
	if cfg.Poll.MissingPartition != "continue" {
		t.Errorf("Poll.MissingPartition = %q, want continue", cfg.Poll.MissingPartition)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Database.Driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("Embedding.Provider = %q, want hash", cfg.Embedding.Provider)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Gateway: GatewayConfig{Host: "vs.internal", Port: 9000},
		Retry:   RetryConfig{MaxAttempts: 7, IntervalMs: 20},
	}
	cfg.ApplyDefaults()

	if cfg.Gateway.Host != "vs.internal" || cfg.Gateway.Port != 9000 {
		t.Errorf("gateway overridden: %+v", cfg.Gateway)
	}
	if cfg.Retry.MaxAttempts != 7 || cfg.Retry.IntervalMs != 20 {
		t.Errorf("retry overridden: %+v", cfg.Retry)
	}
	if got := cfg.Gateway.Address(); got != "http://vs.internal:9000" {
		t.Errorf("Address() = %q", got)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("VS_TEST_HOST", "remote")
	data := []byte("gateway:\n  host: ${VS_TEST_HOST}\n  port: ${VS_TEST_PORT:-19530}\n")

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Gateway.Host != "remote" {
		t.Errorf("Host = %q, want remote", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 19530 {
		t.Errorf("Port = %d, want 19530", cfg.Gateway.Port)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("poll:\n  missing_partition: never\n")); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected yaml error")
	}
}
