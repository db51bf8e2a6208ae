// Package config builds the storefront configuration from defaults, an
// optional YAML file and environment variables (in that order of precedence).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog source names
const (
	SourceEndpoint = "endpoint"
	SourceSheets   = "sheets"
)

// Catalog fallback policies applied when loading fails
const (
	FallbackEmpty = "empty"
	FallbackDemo  = "demo"
)

// Config is the full application configuration
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Receipt  ReceiptConfig  `yaml:"receipt"`
}

// EndpointConfig describes the remote catalog/order endpoint
type EndpointConfig struct {
	URL       string        `yaml:"url"`
	SourceTag string        `yaml:"source_tag"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CatalogConfig selects where the catalog comes from and what happens when it can't be loaded
type CatalogConfig struct {
	Source      string `yaml:"source"`   // "endpoint" or "sheets"
	Fallback    string `yaml:"fallback"` // "empty" or "demo"
	SheetID     string `yaml:"sheet_id"`
	SheetRange  string `yaml:"sheet_range"`
	Credentials string `yaml:"credentials"` // Service account JSON file for the sheets source
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port    string `yaml:"port"`
	BaseURL string `yaml:"base_url"` // Used by headless Chrome to reach the receipt page
}

// DatabaseConfig enables the PostgreSQL receipt store when URL is set
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ReceiptConfig configures receipt exports
type ReceiptConfig struct {
	ChromePath string `yaml:"chrome_path"`
	PNGWidth   int    `yaml:"png_width"`
}

// Default returns the configuration used when nothing else is provided
func Default() Config {
	return Config{
		Endpoint: EndpointConfig{
			SourceTag: "trader-storefront",
			Timeout:   30 * time.Second,
		},
		Catalog: CatalogConfig{
			Source:     SourceEndpoint,
			Fallback:   FallbackEmpty,
			SheetRange: "Catalog!A1:D",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Receipt: ReceiptConfig{
			PNGWidth: 800,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), then
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.Server.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Server.Port), ":")
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:" + cfg.Server.Port
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("STOREFRONT_ENDPOINT_URL", &c.Endpoint.URL)
	str("STOREFRONT_SOURCE_TAG", &c.Endpoint.SourceTag)
	str("STOREFRONT_CATALOG_SOURCE", &c.Catalog.Source)
	str("STOREFRONT_CATALOG_FALLBACK", &c.Catalog.Fallback)
	str("STOREFRONT_SHEET_ID", &c.Catalog.SheetID)
	str("STOREFRONT_SHEET_RANGE", &c.Catalog.SheetRange)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Catalog.Credentials)
	str("PORT", &c.Server.Port)
	str("STOREFRONT_BASE_URL", &c.Server.BaseURL)
	str("DATABASE_URL", &c.Database.URL)
	str("CHROME_PATH", &c.Receipt.ChromePath)

	if v, ok := lookup("STOREFRONT_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STOREFRONT_REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.Endpoint.Timeout = d
	}
	if v, ok := lookup("STOREFRONT_RECEIPT_PNG_WIDTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STOREFRONT_RECEIPT_PNG_WIDTH %q: %w", v, err)
		}
		c.Receipt.PNGWidth = n
	}

	c.Catalog.Source = strings.ToLower(c.Catalog.Source)
	c.Catalog.Fallback = strings.ToLower(c.Catalog.Fallback)
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	// Orders are always posted to the endpoint, whatever the catalog source.
	if c.Endpoint.URL == "" {
		errs = append(errs, errors.New("endpoint.url is required (STOREFRONT_ENDPOINT_URL)"))
	} else if u, err := url.Parse(c.Endpoint.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("endpoint.url must be an absolute http(s) URL, got %q", c.Endpoint.URL))
	}

	if c.Endpoint.Timeout <= 0 {
		errs = append(errs, errors.New("endpoint.timeout must be positive"))
	}

	switch c.Catalog.Source {
	case SourceEndpoint:
	case SourceSheets:
		if c.Catalog.SheetID == "" {
			errs = append(errs, errors.New("catalog.sheet_id is required for the sheets source"))
		}
		if c.Catalog.Credentials == "" {
			errs = append(errs, errors.New("catalog.credentials is required for the sheets source (GOOGLE_APPLICATION_CREDENTIALS)"))
		}
	default:
		errs = append(errs, fmt.Errorf("catalog.source must be %q or %q, got %q", SourceEndpoint, SourceSheets, c.Catalog.Source))
	}

	if c.Catalog.Fallback != FallbackEmpty && c.Catalog.Fallback != FallbackDemo {
		errs = append(errs, fmt.Errorf("catalog.fallback must be %q or %q, got %q", FallbackEmpty, FallbackDemo, c.Catalog.Fallback))
	}

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Receipt.PNGWidth <= 0 {
		errs = append(errs, errors.New("receipt.png_width must be positive"))
	}

	return errors.Join(errs...)
}
