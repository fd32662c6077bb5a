package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/nilq/internal/compress"
	"gopkg.in/yaml.v3"
)

// Config is the file and flag configuration of a run or batch.
type Config struct {
	Signature       string           `yaml:"signature" validate:"oneof=lie group"`
	Ring            string           `yaml:"ring" validate:"required,ring"`
	MaxClass        int              `yaml:"max_class" validate:"gte=0"`
	Graded          bool             `yaml:"graded"`
	DefaultExponent string           `yaml:"default_exponent" validate:"required,numeric"`
	QueueFactor     int              `yaml:"queue_factor" validate:"gte=0"`
	Format          string           `yaml:"format" validate:"oneof=plain gap json"`
	Output          string           `yaml:"output"`
	LogLevel        string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string           `yaml:"log_format" validate:"oneof=text json"`
	MetricsFile     string           `yaml:"metrics_file"`
	Concurrency     int              `yaml:"concurrency" validate:"gte=0"`
	MemoryLimit     int64            `yaml:"memory_limit_bytes" validate:"gte=0"`
	Checkpoint      CheckpointConfig `yaml:"checkpoint"`
}

// CheckpointConfig selects where per-class snapshots are written.
// An empty Store disables checkpoints.
type CheckpointConfig struct {
	Store       string `yaml:"store" validate:"omitempty,oneof=local s3 minio"`
	Dir         string `yaml:"dir" validate:"required_if=Store local"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Table       string `yaml:"table"`
	Endpoint    string `yaml:"endpoint" validate:"required_if=Store minio"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Secure      bool   `yaml:"secure"`
	Compression string `yaml:"compression" validate:"omitempty,oneof=none lz4 zstd"`
	Keep        int    `yaml:"keep" validate:"gte=0"`
	Resume      string `yaml:"resume"`
}

// DefaultConfig returns the configuration used when neither file nor flags
// set a value.
func DefaultConfig() Config {
	return Config{
		Signature:       "lie",
		Ring:            "integer",
		DefaultExponent: "0",
		Format:          "plain",
		LogLevel:        "info",
		LogFormat:       "text",
		Checkpoint: CheckpointConfig{
			Compression: compress.ZSTD.String(),
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ring", validateRing)
	v.RegisterStructValidation(validateCheckpoint, CheckpointConfig{})
	return v
}

// validateRing accepts the ring kinds; parameters are checked by ring.ParseSpec.
func validateRing(fl validator.FieldLevel) bool {
	kind, _, _ := strings.Cut(fl.Field().String(), ":")
	switch kind {
	case "int64", "integer", "mod2k", "modpk":
		return true
	}
	return false
}

func validateCheckpoint(sl validator.StructLevel) {
	c := sl.Current().Interface().(CheckpointConfig)
	if (c.Store == "s3" || c.Store == "minio") && c.Bucket == "" {
		sl.ReportError(c.Bucket, "Bucket", "bucket", "required", c.Store)
	}
	if c.Table != "" && c.Store != "s3" {
		sl.ReportError(c.Table, "Table", "table", "excluded_unless", "s3")
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
