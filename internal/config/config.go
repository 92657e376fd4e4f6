package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Links     LinksConfig     `yaml:"links"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	App       AppConfig       `yaml:"app"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" yaml:"host"`
	Port            string        `envconfig:"SERVER_PORT" yaml:"port"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" yaml:"write_timeout"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

func (c *ServerConfig) setDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port cannot be empty")
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 || c.ShutdownTimeout < 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// DatabaseConfig selects the storage backend and how to reach it. For the
// SQLite backend Name is the database file path.
type DatabaseConfig struct {
	Backend  string `envconfig:"DB_BACKEND" yaml:"backend"`
	Host     string `envconfig:"DB_HOST" yaml:"host"`
	Port     string `envconfig:"DB_PORT" yaml:"port"`
	User     string `envconfig:"DB_USER" yaml:"user"`
	Password string `envconfig:"DB_PASSWORD" yaml:"password"`
	Name     string `envconfig:"DB_NAME" yaml:"name"`
	SSLMode  string `envconfig:"DB_SSLMODE" yaml:"sslmode"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" yaml:"max_conns"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" yaml:"min_conns"`
}

func (c *DatabaseConfig) setDefaults() {
	if c.Backend == "" {
		c.Backend = BackendPostgres
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.Name == "" {
		if c.Backend == BackendSQLite {
			c.Name = "shortlink.db"
		} else {
			c.Name = "shortlink"
		}
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConns == 0 {
		c.MaxConns = 5
	}
	if c.MinConns == 0 {
		c.MinConns = 1
	}
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Name == "" {
		return errors.New("database name cannot be empty")
	}
	if c.MaxConns <= 0 {
		return errors.New("max connections must be positive")
	}
	if c.MinConns < 0 {
		return errors.New("min connections cannot be negative")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}

	switch c.Backend {
	case BackendSQLite:
		return nil
	case BackendPostgres:
	default:
		return fmt.Errorf("invalid backend: %s (must be one of: postgres, sqlite)", c.Backend)
	}

	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.User == "" {
		return errors.New("user cannot be empty")
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s (must be one of: disable, require, verify-ca, verify-full)", c.SSLMode)
	}
	return nil
}

// ConnectionString returns the PostgreSQL keyword/value connection string.
// Values are quoted when they are empty or contain spaces, quotes or
// backslashes.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dsnValue(c.Host), dsnValue(c.Port), dsnValue(c.User),
		dsnValue(c.Password), dsnValue(c.Name), dsnValue(c.SSLMode),
	)
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// LinksConfig tunes code generation.
type LinksConfig struct {
	CodeSize    int `envconfig:"CODE_SIZE" yaml:"code_size"`
	MaxAttempts int `envconfig:"CODE_MAX_ATTEMPTS" yaml:"max_attempts"`
}

func (c *LinksConfig) setDefaults() {
	if c.CodeSize == 0 {
		c.CodeSize = 6
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
}

func (c *LinksConfig) Validate() error {
	if c.CodeSize < 4 || c.CodeSize > 32 {
		return fmt.Errorf("code size must be between 4 and 32, got %d", c.CodeSize)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

// AuthConfig holds the delete credential. An empty token is replaced with a
// generated one at startup.
type AuthConfig struct {
	BearerToken string `envconfig:"BEARER_TOKEN" yaml:"bearer_token"`
}

func (c *AuthConfig) Validate() error {
	for _, r := range c.BearerToken {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return errors.New("bearer token cannot contain whitespace")
		}
	}
	return nil
}

// RateLimitConfig limits mutating requests per client IP. RPS 0 disables it.
type RateLimitConfig struct {
	RPS        float64 `envconfig:"RATE_LIMIT_RPS" yaml:"rps"`
	Burst      int     `envconfig:"RATE_LIMIT_BURST" yaml:"burst"`
	TrustProxy bool    `envconfig:"RATE_LIMIT_TRUST_PROXY" yaml:"trust_proxy"` // key on X-Forwarded-For
}

func (c *RateLimitConfig) setDefaults() {
	if c.Burst == 0 {
		c.Burst = 10
	}
}

func (c *RateLimitConfig) Validate() error {
	if c.RPS < 0 {
		return fmt.Errorf("rate limit rps cannot be negative, got %f", c.RPS)
	}
	if c.Burst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1, got %d", c.Burst)
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" yaml:"environment"` // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" yaml:"log_level"` // debug, info, warn, error
}

func (c *AppConfig) setDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	if !ValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// ValidLogLevel reports whether level is one of debug, info, warn, error.
func ValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

type section interface {
	Validate() error
}

// Load reads the optional YAML file at path, overlays environment
// variables, fills defaults for anything still unset and validates each
// section. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	sections := []struct {
		name string
		spec any
	}{
		{"Server", &cfg.Server},
		{"Database", &cfg.Database},
		{"Links", &cfg.Links},
		{"Auth", &cfg.Auth},
		{"RateLimit", &cfg.RateLimit},
		{"App", &cfg.App},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}

	cfg.Server.setDefaults()
	cfg.Database.setDefaults()
	cfg.Links.setDefaults()
	cfg.RateLimit.setDefaults()
	cfg.App.setDefaults()

	for _, s := range sections {
		if err := s.spec.(section).Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s config: %w", s.name, err)
		}
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
