package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	ClinicAPI ClinicAPIConfig
	Calendar  CalendarConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ClinicAPIConfig points at the clinic REST backend that owns all appointment data.
type ClinicAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CalendarConfig struct {
	Timezone           string
	DefaultView        string
	SessionIdleTimeout time.Duration
	ResourceCacheTTL   time.Duration
	SlotCacheTTL       time.Duration
}

// DSN returns the postgres connection string used by gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// MigrationURL returns the pgx5 URL used by golang-migrate.
func (c DBConfig) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Location resolves the calendar timezone; "Local" or empty means the process zone.
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Environment-only deployments have no .env file.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:     stringOrDefault("APP_PORT", "8080"),
			Env:      stringOrDefault("APP_ENV", "development"),
			LogLevel: stringOrDefault("APP_LOG_LEVEL", "info"),
			// Comma separated; empty allows any origin.
			CORSOrigins: splitList(viper.GetString("APP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  stringOrDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOrDefault("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOrDefault("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		ClinicAPI: ClinicAPIConfig{
			BaseURL: viper.GetString("CLINIC_API_BASE_URL"),
			Timeout: durationOrDefault("CLINIC_API_TIMEOUT", 15*time.Second),
		},
		Calendar: CalendarConfig{
			Timezone:           stringOrDefault("CALENDAR_TIMEZONE", "Local"),
			DefaultView:        stringOrDefault("CALENDAR_DEFAULT_VIEW", "timeGridWeek"),
			SessionIdleTimeout: durationOrDefault("CALENDAR_SESSION_IDLE_TIMEOUT", 30*time.Minute),
			ResourceCacheTTL:   durationOrDefault("CALENDAR_RESOURCE_CACHE_TTL", 10*time.Minute),
			SlotCacheTTL:       durationOrDefault("CALENDAR_SLOT_CACHE_TTL", time.Minute),
		},
	}

	if config.ClinicAPI.BaseURL == "" {
		return nil, errors.New("CLINIC_API_BASE_URL is required")
	}

	return config, nil
}

func stringOrDefault(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
