package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ReportCacheTTL time.Duration
	RetentionDays  int
	MaxSnapshots   int
	SweepInterval  time.Duration
	WeeklyMVPMin   int

	// Location decides where calendar days start for daily streaks.
	Location *time.Location
}

func Load() Config {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		RetentionDays:  getEnvInt("RETENTION_DAYS", 30),
		MaxSnapshots:   getEnvInt("MAX_SNAPSHOTS", 30),
		SweepInterval:  getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),
		WeeklyMVPMin:   getEnvInt("WEEKLY_MVP_MIN", 10),
		Location:       getEnvLocation("TIMEZONE", time.UTC),
	}
	return cfg
}

// Retention is RetentionDays as a duration.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnvLocation(key string, fallback *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		loc, err := time.LoadLocation(v)
		if err == nil {
			return loc
		}
		log.Printf("[Config] Unknown %s %q, using %s", key, v, fallback)
	}
	return fallback
}
