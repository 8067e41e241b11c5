package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/workbridg/workbridg-web/internal/constants"
)

type Config struct {
	ServerURL      string
	Port           string
	GinMode        string
	SessionSecret  string
	SessionStore   string
	RedisHost      string
	RedisPort      string
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	LogLevel       string
	LogFile        string
	PollInterval   time.Duration
	BackendTimeout time.Duration
	AllowedOrigins []string
	OpenAIAPIKey   string
}

// Load reads configuration from .env or config.yaml when present; environment
// variables always win.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	for _, file := range []string{".env", "config.yaml"} {
		v.SetConfigFile(file)
		err := v.ReadInConfig()
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_URL", "http://localhost:8000/api/v1")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("SESSION_STORE", "cookie")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "workbridg")
	v.SetDefault("DB_PASSWORD", "workbridg")
	v.SetDefault("DB_NAME", "workbridg_web")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("CHAT_POLL_INTERVAL", constants.DefaultChatPollInterval)
	v.SetDefault("BACKEND_TIMEOUT", constants.DefaultBackendTimeout)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:8080")
	v.SetDefault("OPENAI_API_KEY", "")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		ServerURL:      strings.TrimRight(v.GetString("SERVER_URL"), "/"),
		Port:           v.GetString("PORT"),
		GinMode:        v.GetString("GIN_MODE"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionStore:   strings.ToLower(v.GetString("SESSION_STORE")),
		RedisHost:      v.GetString("REDIS_HOST"),
		RedisPort:      v.GetString("REDIS_PORT"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
		PollInterval:   v.GetDuration("CHAT_POLL_INTERVAL"),
		BackendTimeout: v.GetDuration("BACKEND_TIMEOUT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		OpenAIAPIKey:   v.GetString("OPENAI_API_KEY"),
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = constants.DefaultChatPollInterval
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = constants.DefaultBackendTimeout
	}
	return cfg
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
