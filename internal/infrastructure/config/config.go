// Package config assembles service configuration from the environment and
// from YAML files in the importer config dir. The Config struct is built
// once at process start and passed by reference; nothing here is a mutable
// global.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	DefaultCurrency string
	DefaultCountry  string

	// ConfigDir holds categories.yaml and hooks.yaml. Empty disables
	// category matching and part rules.
	ConfigDir string

	// RequestTimeout bounds every outbound supplier/inventory call.
	RequestTimeout time.Duration

	// DatabaseURL enables the import history store when set.
	DatabaseURL string

	// JWTSecret enables API authentication when set.
	JWTSecret string

	Inventree InventreeConfig
	Mouser    MouserConfig
	Digikey   DigikeyConfig

	// Suppliers lists the enabled supplier slugs.
	Suppliers []string
}

// InventreeConfig holds inventory-system credentials.
type InventreeConfig struct {
	BaseURL string
	Token   string
}

// MouserConfig holds Mouser credentials.
type MouserConfig struct {
	APIKey    string
	BaseURL   string
	CompanyID *int
}

// DigikeyConfig holds Digi-Key credentials.
type DigikeyConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	CompanyID    *int
}

// FromEnv builds a Config from environment variables. Missing credentials
// are not an error here; each component reports a configuration error when
// it is actually used without them.
func FromEnv() *Config {
	return &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("APP_PORT", "8080"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "EUR"),
		DefaultCountry:  getEnv("DEFAULT_COUNTRY", "PT"),
		ConfigDir:       getEnv("IMPORTER_CONFIG_DIR", ""),
		RequestTimeout:  getEnvDuration("IMPORTER_REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		Inventree: InventreeConfig{
			BaseURL: getEnv("INVENTREE_BASE_URL", ""),
			Token:   getEnv("INVENTREE_TOKEN", ""),
		},
		Mouser: MouserConfig{
			APIKey:    getEnv("MOUSER_API_KEY", ""),
			BaseURL:   getEnv("MOUSER_BASE_URL", ""),
			CompanyID: getEnvIntPtr("INVENTREE_MOUSER_COMPANY_ID"),
		},
		Digikey: DigikeyConfig{
			ClientID:     getEnv("DIGIKEY_CLIENT_ID", ""),
			ClientSecret: getEnv("DIGIKEY_CLIENT_SECRET", ""),
			BaseURL:      getEnv("DIGIKEY_BASE_URL", ""),
			TokenURL:     getEnv("DIGIKEY_TOKEN_URL", ""),
			CompanyID:    getEnvIntPtr("INVENTREE_DIGIKEY_COMPANY_ID"),
		},
		Suppliers: splitList(getEnv("IMPORTER_SUPPLIERS", "mouser,digikey")),
	}
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// SupplierEnabled reports whether a supplier slug is enabled.
func (c *Config) SupplierEnabled(slug string) bool {
	for _, s := range c.Suppliers {
		if strings.EqualFold(s, slug) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvIntPtr(key string) *int {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
