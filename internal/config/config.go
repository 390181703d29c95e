package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Facility FacilityConfig
	Auth     AuthConfig
	Pass     PassConfig
	LogDir   string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver        string // sqlite or postgres
	SQLitePath    string
	PostgresDSN   string
	MigrationsDir string
	AutoMigrate   bool
	MaxOpenConns  int
	MaxIdleConns  int
	MaxLifetime   time.Duration
}

type RedisConfig struct {
	Addr        string
	LockTTL     time.Duration
	LockRetries int
	RetryDelay  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

type FacilityConfig struct {
	Timezone          string
	TimelineStartHour int
	TimelineEndHour   int
	DefaultHourlyRate float64
}

type AuthConfig struct {
	OIDCIssuer string
	JWTSecret  string
}

type PassConfig struct {
	Secret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8086"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			SQLitePath:    getEnv("SQLITE_PATH", "file:seating.db?cache=shared"),
			PostgresDSN:   getEnv("POSTGRES_DSN", ""),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
			AutoMigrate:   getEnvBool("AUTO_MIGRATE", true),
			MaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:   time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			LockTTL:     time.Duration(getEnvInt("SEAT_LOCK_TTL_SECONDS", 10)) * time.Second,
			LockRetries: getEnvInt("SEAT_LOCK_RETRIES", 5),
			RetryDelay:  time.Duration(getEnvInt("SEAT_LOCK_RETRY_MS", 50)) * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		Facility: FacilityConfig{
			Timezone:          getEnv("FACILITY_TIMEZONE", "Local"),
			TimelineStartHour: getEnvInt("TIMELINE_START_HOUR", 7),
			TimelineEndHour:   getEnvInt("TIMELINE_END_HOUR", 21),
			DefaultHourlyRate: getEnvFloat("DEFAULT_HOURLY_RATE", 30),
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("AUTH_OIDC_ISSUER", ""),
			JWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		},
		Pass: PassConfig{
			Secret: getEnv("PASS_SECRET", "change-me"),
		},
		LogDir: getEnv("LOG_DIR", "logs"),
	}
}

// Location resolves the facility time zone, falling back to the host zone.
func (c FacilityConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
