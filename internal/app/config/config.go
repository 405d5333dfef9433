// Package config loads the application configuration from YAML, tag defaults and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/boatjones/quant-lab/internal/platform/db"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/fmp"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/tiingo"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/twelvedata"
	"github.com/boatjones/quant-lab/internal/platform/logging"
	"github.com/boatjones/quant-lab/internal/platform/redis"
)

// Provider names accepted in source lists.
const (
	ProviderTiingo     = "tiingo"
	ProviderFMP        = "fmp"
	ProviderTwelveData = "twelvedata"
)

// Config is the whole application configuration.
type Config struct {
	DB          db.Config         `yaml:"db"`
	Redis       redis.Config      `yaml:"redis"`
	Logging     logging.Config    `yaml:"logging"`
	Server      ServerConfig      `yaml:"server"`
	Tiingo      tiingo.Config     `yaml:"tiingo"`
	FMP         fmp.Config        `yaml:"fmp"`
	TwelveData  twelvedata.Config `yaml:"twelvedata"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// MaintenanceConfig tunes the maintenance run.
type MaintenanceConfig struct {
	BatchSize          int   `yaml:"batch_size" default:"100" validate:"gt=0"`
	FallbackDays       int   `yaml:"fallback_days" default:"30" validate:"gt=0"`
	LookbackDays       int   `yaml:"lookback_days" default:"30" validate:"gte=0"`
	StaleThresholdDays int   `yaml:"stale_threshold_days" default:"30" validate:"gte=0"`
	AnomalyThreshold   int64 `yaml:"anomaly_threshold" default:"1000" validate:"gte=0"`
	RecentDays         int   `yaml:"recent_days" default:"7" validate:"gt=0"`
	FilterJunk         bool  `yaml:"filter_junk" default:"true"`
	PurgeIncomplete    bool  `yaml:"purge_incomplete" default:"true"`

	UniverseSources       []string `yaml:"universe_sources" default:"[\"tiingo\",\"fmp\"]" validate:"min=1,unique,dive,oneof=tiingo fmp"`
	ClassificationSources []string `yaml:"classification_sources" default:"[\"fmp\",\"twelvedata\"]" validate:"min=1,unique,dive,oneof=fmp twelvedata"`
	PriceSource           string   `yaml:"price_source" default:"tiingo" validate:"oneof=tiingo twelvedata"`

	// Schedule is a standard cron expression for cmd/server; empty disables scheduling.
	Schedule string `yaml:"schedule"`
	// RunTimeout bounds one scheduled run.
	RunTimeout time.Duration `yaml:"run_timeout" default:"6h"`
	// Timezone applies to Schedule and CacheRefreshAt.
	Timezone string `yaml:"timezone" default:"America/New_York"`
	// CacheRefreshAt ("HH:MM") caps cached price reads at the next daily refresh.
	CacheRefreshAt string `yaml:"cache_refresh_at" validate:"omitempty,datetime=15:04"`
}

// Location resolves Timezone.
func (m MaintenanceConfig) Location() (*time.Location, error) {
	return time.LoadLocation(m.Timezone)
}

var validate = validator.New()

// Load reads path, applies tag defaults first so the file only overrides what it sets,
// then overrides from the environment and validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// env-only configuration
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	db.ApplyEnv(&c.DB)

	overrides := []struct {
		key string
		dst *string
	}{
		{"REDIS_HOST", &c.Redis.Host},
		{"REDIS_PORT", &c.Redis.Port},
		{"REDIS_PASSWORD", &c.Redis.Password},
		{"TIINGO_API_KEY", &c.Tiingo.APIKey},
		{"FMP_API_KEY", &c.FMP.APIKey},
		{"TWELVE_DATA_API_KEY", &c.TwelveData.TwelveDataAPIKey},
		{"LOG_LEVEL", &c.Logging.Level},
		{"HTTP_ADDR", &c.Server.Addr},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.dst = v
		}
	}
}

// Validate checks struct rules and the timezone.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Maintenance.Location(); err != nil {
		return fmt.Errorf("maintenance.timezone: %w", err)
	}
	return nil
}

// RequireProviderKeys checks that every provider used by a maintenance run has an API key.
// Read-only commands skip this check.
func (c *Config) RequireProviderKeys() error {
	var missing []string
	for _, p := range c.UsedProviders() {
		if c.apiKey(p) == "" {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing API key for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// UsedProviders lists the configured providers in first-use order without duplicates.
func (c *Config) UsedProviders() []string {
	var out []string
	add := func(p string) {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	for _, p := range c.Maintenance.UniverseSources {
		add(p)
	}
	for _, p := range c.Maintenance.ClassificationSources {
		add(p)
	}
	add(c.Maintenance.PriceSource)
	return out
}

func (c *Config) apiKey(provider string) string {
	switch provider {
	case ProviderTiingo:
		return c.Tiingo.APIKey
	case ProviderFMP:
		return c.FMP.APIKey
	case ProviderTwelveData:
		return c.TwelveData.TwelveDataAPIKey
	}
	return ""
}
