package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tutormind/tutormind-backend/internal/platform/logger"
	"github.com/tutormind/tutormind-backend/internal/utils"
)

// Config holds the serving-side knobs. Values come from an optional YAML
// file (CONFIG_PATH) with environment variables taking precedence.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`

	Auth struct {
		JWTSecret      string `yaml:"jwt_secret"`
		AccessTokenTTL int    `yaml:"access_token_ttl_seconds"`
	} `yaml:"auth"`

	Quota struct {
		FreeDailyLimit int `yaml:"free_daily_limit"`
	} `yaml:"quota"`
}

func Load(log *logger.Logger) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.CORS.AllowOrigins = []string{"http://localhost:3000"}
	cfg.Auth.AccessTokenTTL = 3600
	cfg.Quota.FreeDailyLimit = 15

	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.Server.Port = utils.GetEnv("PORT", cfg.Server.Port, log)
	cfg.Auth.JWTSecret = utils.GetEnv("JWT_SECRET_KEY", cfg.Auth.JWTSecret, log)
	cfg.Auth.AccessTokenTTL = utils.GetEnvAsInt("ACCESS_TOKEN_TTL", cfg.Auth.AccessTokenTTL, log)
	cfg.Quota.FreeDailyLimit = utils.GetEnvAsInt("QUOTA_FREE_DAILY_LIMIT", cfg.Quota.FreeDailyLimit, log)
	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS")); origins != "" {
		parts := strings.Split(origins, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		cfg.CORS.AllowOrigins = out
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET_KEY")
	}
	return cfg, nil
}
