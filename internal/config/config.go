// Package config loads runtime settings from the environment.
//
// Variables are named SECTION_KEY (DB_HOST, HTTP_READ_TIMEOUT, ...) and land in
// the matching section struct. A .env file in the working directory is read first
// when present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app" validate:"required"`
	HTTP      HTTPConfig      `koanf:"http" validate:"required"`
	DB        DBConfig        `koanf:"db" validate:"required"`
	Redis     RedisConfig     `koanf:"redis"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Auth      AuthConfig      `koanf:"auth"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

type AppConfig struct {
	Name    string `koanf:"name" validate:"required"`
	Env     string `koanf:"env" validate:"required,oneof=development staging production test"`
	Version string `koanf:"version"`
}

type HTTPConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`
}

type DBConfig struct {
	Driver      string `koanf:"driver" validate:"required,oneof=postgres sqlite"`
	Host        string `koanf:"host" validate:"required_if=Driver postgres"`
	Port        string `koanf:"port" validate:"required_if=Driver postgres"`
	User        string `koanf:"user" validate:"required_if=Driver postgres"`
	Password    string `koanf:"password"`
	Name        string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode     string `koanf:"sslmode"`
	SQLitePath  string `koanf:"sqlite_path" validate:"required_if=Driver sqlite"`
	MaxRetries  int    `koanf:"max_retries" validate:"gte=1"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// RedisConfig with an empty Addr disables caching.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// KafkaConfig with an empty Broker disables the outbox on the API side.
type KafkaConfig struct {
	Broker       string        `koanf:"broker"`
	GroupID      string        `koanf:"group_id"`
	PollInterval time.Duration `koanf:"poll_interval"`
}

type AuthConfig struct {
	Enabled   bool   `koanf:"enabled"`
	JWTSecret string `koanf:"jwt_secret" validate:"required_if=Enabled true"`
}

type LogConfig struct {
	Level    string `koanf:"level" validate:"oneof=debug info warn error"`
	Encoding string `koanf:"encoding" validate:"oneof=json console"`
}

type OtelConfig struct {
	Exporter    string  `koanf:"exporter" validate:"oneof=none stdout otlp"`
	Endpoint    string  `koanf:"endpoint" validate:"required_if=Exporter otlp"`
	Insecure    bool    `koanf:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio" validate:"gte=0,lte=1"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" validate:"gte=0"`
	Burst int     `koanf:"burst" validate:"gte=0"`
}

var sections = map[string]struct{}{
	"app": {}, "http": {}, "db": {}, "redis": {}, "kafka": {},
	"auth": {}, "log": {}, "otel": {}, "cors": {}, "ratelimit": {},
}

var defaults = map[string]any{
	"app.name":             "go-workforce",
	"app.env":              "development",
	"http.port":            "8080",
	"http.read_timeout":    "5s",
	"http.write_timeout":   "10s",
	"http.idle_timeout":    "60s",
	"db.driver":            "postgres",
	"db.sslmode":           "disable",
	"db.max_retries":       5,
	"db.auto_migrate":      true,
	"kafka.group_id":       "go-workforce-audit",
	"kafka.poll_interval":  "3s",
	"log.level":            "info",
	"log.encoding":         "json",
	"otel.exporter":        "none",
	"otel.sample_ratio":    0.1,
	"cors.allowed_origins": []string{"*"},
	"ratelimit.rps":        20,
	"ratelimit.burst":      40,
}

// envKey maps DB_SQLITE_PATH to db.sqlite_path. Variables outside the known
// sections are ignored.
func envKey(s string) string {
	s = strings.ToLower(s)
	section, rest, ok := strings.Cut(s, "_")
	if !ok || rest == "" {
		return ""
	}
	if _, known := sections[section]; !known {
		return ""
	}
	return section + "." + rest
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("config default %s: %w", key, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// PostgresDSN is only meaningful when Driver is postgres.
func (c DBConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}
