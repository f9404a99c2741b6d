package common

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverMysql    = "mysql"
	DBDriverFile     = "file"
	DBDriverMemory   = "memory"

	// Fallbacks kept for local development only, Validate rejects them in production.
	insecureJWTSecret  = "your-secret-key"
	insecureDBPassword = "1234567"
)

type Config struct {
	GoEnv string `envconfig:"GO_ENV" default:"development"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"memory"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"1234567"`
	DBName     string `envconfig:"DB_NAME" default:"maintenance_db"`
	DBPort     int    `envconfig:"DB_PORT" default:"3306"`
	DBPath     string `envconfig:"DB_PATH" default:"maintenance.db"`
	DBPoolSize int    `envconfig:"DB_POOL_SIZE" default:"10"`

	JWTSecret    string `envconfig:"JWT_SECRET" default:"your-secret-key"`
	CookieSecure bool   `envconfig:"COOKIE_SECURE" default:"false"`

	HTTPHostPort string `envconfig:"HTTP_HOST_PORT" default:":3000"`
	GrpcHostPort string `envconfig:"GRPC_HOST_PORT" default:""`
	StaticDir    string `envconfig:"STATIC_DIR" default:"./public"`

	LoginRate  float64 `envconfig:"LOGIN_RATE" default:"1"`
	LoginBurst int     `envconfig:"LOGIN_BURST" default:"5"`

	// per peer limits for gRPC health checks
	GrpcRate  float64 `envconfig:"GRPC_RATE" default:"5"`
	GrpcBurst int     `envconfig:"GRPC_BURST" default:"10"`
}

// LoadConfig reads .env (when present) and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.HTTPHostPort = strings.TrimSpace(cfg.HTTPHostPort)
	cfg.GrpcHostPort = strings.TrimSpace(cfg.GrpcHostPort)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// UsesInsecureDefaults reports which development fallbacks are still active.
func (c *Config) UsesInsecureDefaults() []string {
	var keys []string
	if c.JWTSecret == insecureJWTSecret {
		keys = append(keys, "JWT_SECRET")
	}
	if c.DBPassword == insecureDBPassword && (c.DBDriver == DBDriverPostgres || c.DBDriver == DBDriverMysql) {
		keys = append(keys, "DB_PASSWORD")
	}
	return keys
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DBDriverPostgres, DBDriverMysql, DBDriverFile, DBDriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER: %q", c.DBDriver)
	}
	if c.DBPoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.DBPoolSize)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.LoginBurst < 0 || c.LoginRate < 0 {
		return errors.New("LOGIN_RATE and LOGIN_BURST must not be negative")
	}
	if c.GrpcBurst < 0 || c.GrpcRate < 0 {
		return errors.New("GRPC_RATE and GRPC_BURST must not be negative")
	}
	if c.IsProduction() {
		if insecure := c.UsesInsecureDefaults(); len(insecure) > 0 {
			return fmt.Errorf("insecure development defaults in production: %s", strings.Join(insecure, ", "))
		}
	}
	return nil
}
