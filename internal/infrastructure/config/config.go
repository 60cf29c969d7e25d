package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Model     ModelConfig     `koanf:"model"`
	Rules     RulesConfig     `koanf:"rules"`
	Explainer ExplainerConfig `koanf:"explainer"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	MetricsPort     int           `koanf:"metrics_port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int           `koanf:"max_conns"`
	MinConns        int           `koanf:"min_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// ModelConfig selects and locates the risk scorer. Mode "artifact" loads the
// exported model from disk; mode "remote" calls a model server.
type ModelConfig struct {
	Mode         string        `koanf:"mode"`
	ArtifactPath string        `koanf:"artifact_path"`
	MetricsPath  string        `koanf:"metrics_path"`
	ServerURL    string        `koanf:"server_url"`
	Timeout      time.Duration `koanf:"timeout"`
}

// RulesConfig overrides the rule thresholds. Zero values fall back to the
// rule set's stated defaults.
type RulesConfig struct {
	OddHourStart     int      `koanf:"odd_hour_start"`
	OddHourEnd       int      `koanf:"odd_hour_end"`
	RiskyChannels    []string `koanf:"risky_channels"`
	AmountMultiplier float64  `koanf:"amount_multiplier"`
}

type ExplainerConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

type TelemetryConfig struct {
	Enabled      bool          `koanf:"enabled"`
	OTLPEndpoint string        `koanf:"otlp_endpoint"`
	SamplingRate float64       `koanf:"sampling_rate"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
	BatchTimeout  time.Duration `koanf:"batch_timeout"`
}

type RateLimitConfig struct {
	Enabled           bool `koanf:"enabled"`
	RequestsPerSecond int  `koanf:"requests_per_second"`
}

// Load builds the configuration from defaults, an optional YAML file and
// PTB_-prefixed environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			MetricsPort:     9090,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL:             "postgres://localhost:5432/predictive_txn?sslmode=disable",
			MaxConns:        25,
			MinConns:        5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Model: ModelConfig{
			Mode:         "artifact",
			ArtifactPath: "models/fraud_model.json",
			MetricsPath:  "models/metrics.json",
			Timeout:      5 * time.Second,
		},
		Explainer: ExplainerConfig{
			Timeout: 5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:  "localhost:4317",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			BatchTimeout:  5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 50,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := k.Load(file.Provider("configs/config.yaml"), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading configs/config.yaml: %w", err)
		}
	}

	if err := k.Load(env.Provider("PTB_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "PTB_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
