package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a books directory.
const FileName = "hgb.yaml"

// DefaultTolerance is used when bilanz.tolerance is empty.
const DefaultTolerance = "0.005"

// Storage drivers.
const (
	DriverCSV      = "csv"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the top-level hgb.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Storage  StorageConfig  `yaml:"storage"`
	Bilanz   BilanzConfig   `yaml:"bilanz"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Git      GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name      string `yaml:"name"`
	LegalForm string `yaml:"legal_form"` // e.g. "GmbH", "UG", "Einzelunternehmen"
}

// StorageConfig selects where accounts live.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// BilanzConfig controls balance sheet checks.
type BilanzConfig struct {
	Tolerance string `yaml:"tolerance"`
	Currency  string `yaml:"currency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an hgb.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, legalForm string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:      businessName,
			LegalForm: legalForm,
		},
		Storage: StorageConfig{
			Driver: DriverCSV,
		},
		Bilanz: BilanzConfig{
			Tolerance: DefaultTolerance,
			Currency:  "EUR",
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "HGB Buchhaltung",
			AuthorEmail: "buchhaltung@hgb.local",
		},
	}
}

// ApplyEnv overrides settings from HGB_* environment variables. A .env file
// at envPath is loaded first if it exists; variables already set in the
// environment win.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	if v := os.Getenv("HGB_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("HGB_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("HGB_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("HGB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return c.Validate()
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverCSV, DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %s requires a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := c.Tolerance(); err != nil {
		return err
	}
	return nil
}

// Tolerance parses the Bilanz tolerance. An empty value means
// DefaultTolerance; "0" requires Aktiva and Passiva to match exactly.
func (c *Config) Tolerance() (decimal.Decimal, error) {
	raw := c.Bilanz.Tolerance
	if raw == "" {
		raw = DefaultTolerance
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing bilanz tolerance %q: %w", c.Bilanz.Tolerance, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("bilanz tolerance must not be negative: %s", d)
	}
	return d, nil
}
