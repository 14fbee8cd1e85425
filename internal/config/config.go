package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"

	EnvProduction = "production"
)

type Config struct {
	MongoURI          string
	MongoDB           string
	Port              string
	Env               string
	RabbitMQURL       string
	EventsQueue       string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
	Upload            UploadConfig
	Cache             CacheConfig
}

type UploadConfig struct {
	Dir          string
	PublicPath   string
	MaxBytes     int64
	HostRewrites []HostRewrite
}

// HostRewrite reemplaza From por To en el host usado para construir la URL de la imagen.
type HostRewrite struct {
	From string
	To   string
}

type CacheConfig struct {
	Backend  string
	TTL      time.Duration
	RedisURL string
}

var defaults = map[string]any{
	"MONGO_DB":             "Hostel_finder_Android",
	"PORT":                 "8080",
	"APP_ENV":              "development",
	"UPLOAD_DIR":           "./public/uploads",
	"UPLOAD_PUBLIC_PATH":   "/public/uploads/",
	"UPLOAD_MAX_BYTES":     5 << 20,
	"UPLOAD_HOST_REWRITES": "10.0.2.2=localhost",
	"CACHE_BACKEND":        CacheBackendMemory,
	"CACHE_TTL":            "5m",
	"EVENTS_QUEUE":         "products.events",
	"SHUTDOWN_TIMEOUT":     "10s",
	"READ_HEADER_TIMEOUT":  "5s",
}

func LoadConfig() (*Config, error) {
	// Solo cargar .env en desarrollo local
	// En producción esto se ignora automáticamente
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			slog.Warn("⚠️ Error loading .env file", "error", err)
		} else {
			slog.Info("✅ .env file loaded successfully")
		}
	} else {
		slog.Info("🌐 Using system environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	rewrites, err := parseHostRewrites(v.GetString("UPLOAD_HOST_REWRITES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDB:           v.GetString("MONGO_DB"),
		Port:              v.GetString("PORT"),
		Env:               v.GetString("APP_ENV"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		EventsQueue:       v.GetString("EVENTS_QUEUE"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
		ReadHeaderTimeout: v.GetDuration("READ_HEADER_TIMEOUT"),
		Upload: UploadConfig{
			Dir:          v.GetString("UPLOAD_DIR"),
			PublicPath:   v.GetString("UPLOAD_PUBLIC_PATH"),
			MaxBytes:     v.GetInt64("UPLOAD_MAX_BYTES"),
			HostRewrites: rewrites,
		},
		Cache: CacheConfig{
			Backend:  strings.ToLower(v.GetString("CACHE_BACKEND")),
			TTL:      v.GetDuration("CACHE_TTL"),
			RedisURL: v.GetString("REDIS_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction indica si gin debe correr en modo release.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

func parseHostRewrites(raw string) ([]HostRewrite, error) {
	rewrites := make([]HostRewrite, 0)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("invalid UPLOAD_HOST_REWRITES entry %q", pair)
		}
		rewrites = append(rewrites, HostRewrite{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
	}
	return rewrites, nil
}
