package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageGorm     = "gorm"
	StorageRedis    = "redis"

	LockLocal = "local"
	LockRedis = "redis"
	LockNone  = "none"
)

type Config struct {
	Env        string
	ServerPort string

	Storage string

	DBUrl       string
	GormDialect string

	SlotsTable          string
	SlotsSchema         string
	ExclusionConstraint bool
	OwnerID             uint

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	Lock    string
	LockTTL time.Duration

	AllowOverlap   bool
	MetricsEnabled bool

	// CORSOrigins empty means any origin is echoed back.
	CORSOrigins []string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	_ = godotenv.Load() // sem .env tudo bem

	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		Storage: getEnv("SLOTS_STORAGE", StorageMemory),

		DBUrl:       getEnv("DATABASE_URL", ""),
		GormDialect: getEnv("GORM_DIALECT", "postgres"),

		SlotsTable:          getEnv("SLOTS_TABLE", "slots"),
		SlotsSchema:         getEnv("SLOTS_SCHEMA", "public"),
		ExclusionConstraint: getEnvBool("SLOTS_EXCLUSION_CONSTRAINT", false),
		OwnerID:             uint(getEnvInt("SLOTS_OWNER_ID", 0)),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTTL:      time.Duration(getEnvInt("SLOTS_REDIS_TTL_SECONDS", 0)) * time.Second,

		Lock:    getEnv("SLOTS_LOCK", LockLocal),
		LockTTL: time.Duration(getEnvInt("SLOTS_LOCK_TTL_SECONDS", 10)) * time.Second,

		AllowOverlap:   getEnvBool("SLOTS_ALLOW_OVERLAP", false),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.DBUrl == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	case StorageGorm:
		if c.DBUrl == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for gorm storage"))
		}
		if c.GormDialect != "postgres" && c.GormDialect != "sqlite" {
			errs = append(errs, fmt.Errorf("unknown GORM_DIALECT %q", c.GormDialect))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SLOTS_STORAGE %q", c.Storage))
	}

	switch c.Lock {
	case LockLocal, LockRedis, LockNone:
	default:
		errs = append(errs, fmt.Errorf("unknown SLOTS_LOCK %q", c.Lock))
	}

	if c.RedisTTL < 0 || c.LockTTL < 0 {
		errs = append(errs, errors.New("ttl values must not be negative"))
	}

	return errors.Join(errs...)
}

// NeedsRedis reports whether storage or locking talks to redis.
func (c *Config) NeedsRedis() bool {
	return c.Storage == StorageRedis || c.Lock == LockRedis
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}
