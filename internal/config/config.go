// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr           string `mapstructure:"listen_addr"`
	DataAPIURL           string `mapstructure:"data_api_url"`
	DefaultWallet        string `mapstructure:"default_wallet"`
	DefaultHorizons      []int  `mapstructure:"default_horizons"`
	RequestTimeout       int    `mapstructure:"request_timeout"` // seconds
	Retries              int    `mapstructure:"retries"`
	PageSize             int    `mapstructure:"page_size"`
	MaxActivityPages     int    `mapstructure:"max_activity_pages"`
	ClosedPositionsLimit int    `mapstructure:"closed_positions_limit"`
	ExportDir            string `mapstructure:"export_dir"`
	LogFile              string `mapstructure:"log_file"`
	DebugLogging         bool   `mapstructure:"debug_logging"`
}

const (
	DefaultListenAddr     = ":8081"
	DefaultRequestTimeout = 20
	DefaultRetries        = 3
	DefaultPageSize       = 500
	DefaultMaxPages       = 200
	DefaultClosedLimit    = 50
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":            DefaultListenAddr,
		"data_api_url":           "https://data-api.polymarket.com",
		"default_horizons":       []int{1, 7, 30},
		"request_timeout":        DefaultRequestTimeout,
		"retries":                DefaultRetries,
		"page_size":              DefaultPageSize,
		"max_activity_pages":     DefaultMaxPages,
		"closed_positions_limit": DefaultClosedLimit,
		"export_dir":             "exports",
		"log_file":               "logs/polymarket.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return errors.New("missing listen_addr in configuration")
	}
	if cfg.DataAPIURL == "" {
		return errors.New("missing data_api_url in configuration")
	}
	if err := validateURLWithCache(cfg.DataAPIURL, "http"); err != nil {
		return errors.New("invalid data API URL protocol")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.PageSize <= 0 {
		return errors.New("invalid page_size")
	}
	if cfg.MaxActivityPages <= 0 {
		return errors.New("invalid max_activity_pages")
	}
	if cfg.ClosedPositionsLimit <= 0 {
		return errors.New("invalid closed_positions_limit")
	}
	for _, h := range cfg.DefaultHorizons {
		if h <= 0 {
			return errors.New("invalid default_horizons entry")
		}
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("POLYSHOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envWallet := v.GetString("DEFAULT_WALLET")
	if envWallet != "" {
		cfg.DefaultWallet = envWallet
	}

	envURL := v.GetString("DATA_API_URL")
	if envURL != "" {
		cfg.DataAPIURL = envURL
	}

	envAddr := v.GetString("LISTEN_ADDR")
	if envAddr != "" {
		cfg.ListenAddr = envAddr
	}
	return nil
}
