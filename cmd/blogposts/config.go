package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	APIBaseURL           string        `mapstructure:"API_BASE_URL"`
	APIRequestsPerSecond float64       `mapstructure:"API_REQUESTS_PER_SECOND"`
	NetworkTimeout       time.Duration `mapstructure:"NETWORK_TIMEOUT"`
	PageSize             int           `mapstructure:"PAGE_SIZE"`
	PrefsFile            string        `mapstructure:"PREFS_FILE"`

	DBHost     string `mapstructure:"CACHE_DB_HOST"`
	DBPort     string `mapstructure:"CACHE_DB_PORT"`
	DBUser     string `mapstructure:"CACHE_DB_USER"`
	DBPassword string `mapstructure:"CACHE_DB_PASSWORD"`
	DBName     string `mapstructure:"CACHE_DB_NAME"`
}

var configDefaults = map[string]any{
	"ENVIRONMENT":             "development",
	"LOG_LEVEL":               "info",
	"API_BASE_URL":            "https://open-api.xyz/api/",
	"API_REQUESTS_PER_SECOND": 5,
	"NETWORK_TIMEOUT":         "6s",
	"PAGE_SIZE":               10,
	"PREFS_FILE":              "blogposts.yaml",
	"CACHE_DB_HOST":           "localhost",
	"CACHE_DB_PORT":           "5432",
	"CACHE_DB_USER":           "postgres",
	"CACHE_DB_PASSWORD":       "",
	"CACHE_DB_NAME":           "blogposts",
}

// loadConfig reads the .env file at path. A missing file leaves the defaults
// in place; environment variables win over both.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
