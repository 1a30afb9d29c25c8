package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Facebook FacebookConfig
	Redis    RedisConfig
	Server   ServerConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type FacebookConfig struct {
	AppID       string
	AppSecret   string
	RedirectURI string
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
}

// AppConfig describes the host application this service reports back to.
// URL is the embedded app's public base URL; popup messages are pinned to
// its origin, never posted with a wildcard target.
type AppConfig struct {
	URL            string
	AllowedOrigins []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("💡 Using platform environment variables (no .env file)")
	}

	cfg := &Config{}

	var err error
	if cfg.Database.URL, err = required("DATABASE_URL"); err != nil {
		return nil, err
	}
	if cfg.Facebook.AppID, err = required("FACEBOOK_APP_ID"); err != nil {
		return nil, err
	}
	if cfg.Facebook.AppSecret, err = required("FACEBOOK_APP_SECRET"); err != nil {
		return nil, err
	}
	if cfg.Facebook.RedirectURI, err = required("FACEBOOK_REDIRECT_URI"); err != nil {
		return nil, err
	}
	if cfg.App.URL, err = required("APP_URL"); err != nil {
		return nil, err
	}
	cfg.App.URL = strings.TrimRight(cfg.App.URL, "/")

	cfg.Server.Port = getEnvOrDefault("PORT", "8080")
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Username = os.Getenv("REDIS_USERNAME")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg.App.AllowedOrigins = splitOrigins(getEnvOrDefault("ALLOWED_ORIGINS", cfg.App.URL))

	return cfg, nil
}

func required(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is not set", key)
	}
	return value, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.TrimRight(part, "/"))
		if part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}
