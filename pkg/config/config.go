package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Name        string `yaml:"name"`
	Addr        string `yaml:"addr"`
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	Production  bool   `yaml:"production"`

	CORSOrigins string `yaml:"cors_origins"`

	Auth struct {
		JWTSecret  string        `yaml:"jwt_secret"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"auth"`

	Throttle struct {
		AnonPerMinute int `yaml:"anon_per_minute"`
		UserPerMinute int `yaml:"user_per_minute"`
	} `yaml:"throttle"`

	Media struct {
		Root   string `yaml:"root"`
		Prefix string `yaml:"prefix"`
	} `yaml:"media"`

	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
}

func Default() *Config {
	c := &Config{
		Name:        "railway",
		Addr:        "0.0.0.0",
		Port:        "8000",
		RedisURL:    "redis://localhost:6379",
		CORSOrigins: "http://localhost:3000",
	}
	c.Auth.JWTSecret = "dev-secret-key-change-in-production"
	c.Auth.AccessTTL = 30 * time.Minute
	c.Auth.RefreshTTL = 7 * 24 * time.Hour
	c.Throttle.AnonPerMinute = 10
	c.Throttle.UserPerMinute = 30
	c.Media.Root = "media"
	c.Media.Prefix = "/media"
	c.Cache.TTL = 30 * time.Second
	return c
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[CONFIG] .env ignored: %v", err)
	}

	c := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(c); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.CORSOrigins, "CORS_ORIGINS")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Media.Root, "MEDIA_ROOT")

	if os.Getenv("GO_ENV") == "production" {
		c.Production = true
	}

	if err := setDuration(&c.Auth.AccessTTL, "ACCESS_TOKEN_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.Auth.RefreshTTL, "REFRESH_TOKEN_TTL"); err != nil {
		return err
	}
	if err := setInt(&c.Throttle.AnonPerMinute, "THROTTLE_ANON"); err != nil {
		return err
	}
	return setInt(&c.Throttle.UserPerMinute, "THROTTLE_USER")
}

func (c *Config) ListenAddr() string {
	return c.Addr + ":" + c.Port
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
