package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCHEMAVIEW_"

type DBConfig struct {
	Type         string `yaml:"type" json:"type" env:"DB_TYPE"`
	Host         string `yaml:"host" json:"host" env:"DB_HOST"`
	Port         int    `yaml:"port" json:"port" env:"DB_PORT"`
	Username     string `yaml:"username" json:"username" env:"DB_USERNAME"`
	Password     string `yaml:"password" json:"password" env:"DB_PASSWORD"`
	DatabaseName string `yaml:"database_name" json:"database_name" env:"DB_NAME"`
	DSN          string `yaml:"dsn" json:"dsn" env:"DB_DSN"`             // optional explicit DSN
	Timeout      int    `yaml:"timeout" json:"timeout" env:"DB_TIMEOUT"` // connect timeout in seconds
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port" env:"SERVER_PORT"`
}

// ServiceConfig points the client commands at a running service.
type ServiceConfig struct {
	URL     string        `yaml:"url" json:"url" env:"SERVICE_URL"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" env:"SERVICE_TIMEOUT"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL"`    // debug, info, warn, error
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT"` // console, json
}

// DecodeConfig controls how untyped row values are typed.
type DecodeConfig struct {
	// IntegralNumbers types integer literals as int instead of float.
	IntegralNumbers bool `yaml:"integral_numbers" json:"integral_numbers" env:"INTEGRAL_NUMBERS"`
}

type AppConfig struct {
	Database DBConfig      `yaml:"database" json:"database"`
	Server   ServerConfig  `yaml:"server" json:"server"`
	Service  ServiceConfig `yaml:"service" json:"service"`
	Logging  LoggingConfig `yaml:"logging" json:"logging"`
	Decode   DecodeConfig  `yaml:"decode" json:"decode"`
	// Polymorphic maps a table identifier to its discriminator column.
	Polymorphic map[string]string `yaml:"polymorphic" json:"polymorphic"`
}

// Default returns the configuration used when nothing else is set.
func Default() AppConfig {
	return AppConfig{
		Database: DBConfig{Timeout: 10},
		Server:   ServerConfig{Port: 8080},
		Service:  ServiceConfig{URL: "http://127.0.0.1:5000", Timeout: 30 * time.Second},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
}

// LoadFile loads YAML config from path.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	err := readFile(path, &cfg)
	return cfg, err
}

// readFile overlays the YAML file at path onto cfg.
func readFile(path string, cfg *AppConfig) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(f, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Load starts from Default, overlays the YAML file at path when it exists and
// then the SCHEMAVIEW_* environment variables.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path != "" {
		if err := readFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c AppConfig) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.Logging.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// NormalizeDriver maps common aliases to canonical keys (keeps backwards compat).
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	default:
		return strings.ToLower(d)
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	// If explicit DSN provided, user must also set Type to choose driver or we guess
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres":
		driver = "postgres"
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.DatabaseName)
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}
