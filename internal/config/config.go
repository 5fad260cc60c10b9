package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string
	MigrationsDir string
	TickInterval  time.Duration
}

// fileConfig maps the optional TOML configuration file. Every scalar is
// a pointer so unset keys fall through to env/defaults.
type fileConfig struct {
	Server struct {
		Port                *string  `toml:"port"`
		CORSOrigins         []string `toml:"cors-origins"`
		TickIntervalSeconds *int     `toml:"tick-interval-seconds"`
	} `toml:"server"`
	Storage struct {
		DBPath        *string `toml:"db-path"`
		MigrationsDir *string `toml:"migrations-dir"`
	} `toml:"storage"`
	Auth struct {
		JWTSecret     *string `toml:"jwt-secret"`
		TokenTTLHours *int    `toml:"token-ttl-hours"`
	} `toml:"auth"`
}

// Load builds the configuration from the optional TOML file named by
// CONFIG_PATH, with environment variables taking precedence over file
// values and built-in defaults filling the rest.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		file = loaded
	}

	cfg := Config{
		Port:          getEnv("PORT", fromString(file.Server.Port, "8080")),
		DBPath:        getEnv("DB_PATH", fromString(file.Storage.DBPath, "./data/studyhighway.db")),
		JWTSecret:     getEnv("JWT_SECRET", fromString(file.Auth.JWTSecret, "change-this-secret")),
		TokenTTL:      time.Duration(getEnvInt("TOKEN_TTL_HOURS", fromInt(file.Auth.TokenTTLHours, 72))) * time.Hour,
		CORSOrigins:   getEnvList("CORS_ORIGINS", fromList(file.Server.CORSOrigins, []string{"http://localhost:5173", "http://127.0.0.1:5173"})),
		MigrationsDir: getEnv("MIGRATIONS_DIR", fromString(file.Storage.MigrationsDir, "./migrations")),
		TickInterval:  time.Duration(getEnvInt("TICK_INTERVAL_SECONDS", fromInt(file.Server.TickIntervalSeconds, 1))) * time.Second,
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return cfg, nil
}

// loadFile reads a TOML config from the given path. A missing file is
// not an error.
func loadFile(path string) (fileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("stat config: %w", err)
	}
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func fromString(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}

func fromInt(value *int, fallback int) int {
	if value != nil {
		return *value
	}
	return fallback
}

func fromList(value, fallback []string) []string {
	if len(value) > 0 {
		return value
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
