package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`

	StoreBackend string `env:"STORE_BACKEND, default=memory"`
	DataDir      string `env:"DATA_DIR,      default=./data"`

	Password PasswordConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Admin    AdminConfig

	LoginPerMinute  int `env:"LOGIN_RATE_PER_MINUTE, default=10"`
	ActivityWorkers int `env:"ACTIVITY_WORKERS,      default=4"`
}

type PasswordConfig struct {
	Algo       string `env:"PASSWORD_ALGO,        default=bcrypt"`
	BcryptCost int    `env:"PASSWORD_BCRYPT_COST, default=10"`
	MinLength  int    `env:"PASSWORD_MIN_LENGTH,  default=6"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=resource_api"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// RedisConfig enables the shared login limiter when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// AdminConfig seeds an admin account at startup when both fields are set.
type AdminConfig struct {
	Handle   string `env:"ADMIN_HANDLE"`
	Password string `env:"ADMIN_PASSWORD"`
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendMemory, BackendFile, BackendMongo:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.LoginPerMinute <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive")
	}
	return nil
}
