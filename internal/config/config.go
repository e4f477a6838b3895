package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const configFilePath = "config.json"

// Config is the application configuration. Values come from an optional
// config.json and from environment variables, env taking precedence.
type Config struct {
	HTTPAddress  string        `json:"http-address" mapstructure:"http-address"`
	MySQLDSN     string        `json:"mysql-dsn" mapstructure:"mysql-dsn"`
	RedisAddress string        `json:"redis-address" mapstructure:"redis-address"`
	RateURL      string        `json:"rate-url" mapstructure:"rate-url"`
	FallbackRate float64       `json:"fallback-rate" mapstructure:"fallback-rate"`
	PollInterval time.Duration `json:"poll-interval" mapstructure:"poll-interval"`
	Timezone     string        `json:"timezone" mapstructure:"timezone"`
	LogLevel     string        `json:"log-level" mapstructure:"log-level"`
}

var defaults = map[string]any{
	"http-address":  ":8080",
	"mysql-dsn":     "root:root@tcp(localhost:3306)/fastfoodpos?parseTime=true",
	"redis-address": "localhost:6379",
	"rate-url":      "https://ve.dolarapi.com/v1/dolares/oficial",
	"fallback-rate": 36.5,
	"poll-interval": time.Second,
	"timezone":      "America/Caracas",
	"log-level":     "INFO",
}

// InitConfig reads configuration from config.json and environment
// variables. A missing config file is fine; every field has a default.
func InitConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configFilePath)
	v.SetConfigType("json")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
		v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if !strings.Contains(err.Error(), configFilePath) {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if config.FallbackRate <= 0 {
		return nil, fmt.Errorf("fallback-rate must be positive, got %v", config.FallbackRate)
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("poll-interval must be positive, got %v", config.PollInterval)
	}

	return &config, nil
}
