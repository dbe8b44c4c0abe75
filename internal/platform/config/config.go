// Package config loads the settings every service shares. Values come from the
// environment (optionally seeded from a .env file) with an optional config.yml
// in the working directory underneath.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	Env         string
	HTTP        HTTPConfig
}

// IsProduction reports whether APP_ENV is "production" (case-insensitive).
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NewViper returns a viper instance bound to the process environment.
// A missing .env or config.yml is not an error.
func NewViper() (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config.yml: %w", err)
		}
	}
	return v, nil
}

func Load() (AppConfig, error) {
	v, err := NewViper()
	if err != nil {
		return AppConfig{}, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (AppConfig, error) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")

	cfg := AppConfig{
		ServiceName: strings.TrimSpace(v.GetString("SERVICE_NAME")),
		LogLevel:    strings.TrimSpace(v.GetString("LOG_LEVEL")),
		Env:         strings.TrimSpace(v.GetString("APP_ENV")),
		HTTP: HTTPConfig{
			Addr: strings.TrimSpace(v.GetString("HTTP_ADDR")),
		},
	}
	if cfg.ServiceName == "" {
		return AppConfig{}, errors.New("SERVICE_NAME is required")
	}
	return cfg, nil
}
