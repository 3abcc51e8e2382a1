package config

import (
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const EnvironmentTest = "test"

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/shelfrec.yaml"
)

type Config struct {
	// Environment is development, test or production. Test-only routes are
	// registered in test.
	Environment string `koanf:"environment" default:"production" validate:"oneof=development test production"`

	ServerHost string `koanf:"server_host" default:"0.0.0.0" validate:"required"`
	ServerPort int    `koanf:"server_port" default:"3690" validate:"min=0,max=65535"`

	DatabaseFilePath          string        `koanf:"database_file_path" default:"file::memory:?cache=shared" validate:"required"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5" validate:"min=1"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`

	// CatalogSeedFile replaces the embedded demo catalog when set.
	CatalogSeedFile string `koanf:"catalog_seed_file"`

	RecommenderBaseURL         string        `koanf:"recommender_base_url" default:"http://127.0.0.1:8000" validate:"required,url"`
	RecommenderTopN            int           `koanf:"recommender_top_n" default:"10" validate:"min=1"`
	RecommenderTimeout         time.Duration `koanf:"recommender_timeout" default:"15s"`
	RecommenderRateLimit       float64       `koanf:"recommender_rate_limit" default:"5" validate:"min=0"`
	RecommenderBreakerFailures uint32        `koanf:"recommender_breaker_failures" default:"5"`
	RecommenderBreakerCooldown time.Duration `koanf:"recommender_breaker_cooldown" default:"30s"`

	// RefreshInterval enables periodic refreshes for the active user. Zero
	// disables them.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	MinPageSize     int `koanf:"min_page_size" default:"4" validate:"min=1"`
	MaxPageSize     int `koanf:"max_page_size" default:"24" validate:"gtefield=MinPageSize"`
	DefaultPageSize int `koanf:"default_page_size" default:"12" validate:"gtefield=MinPageSize,ltefield=MaxPageSize"`

	DefaultYearMin int `koanf:"default_year_min" default:"1900"`
	DefaultYearMax int `koanf:"default_year_max" default:"2024" validate:"gtefield=DefaultYearMin"`
}

// New loads the config from struct defaults, then the YAML file named by
// CONFIG_FILE (if it exists), then environment variables.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a valid config without reading the file or environment.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.Environment = EnvironmentTest
	cfg.ServerHost = "127.0.0.1"
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.RecommenderBreakerFailures = 0
	cfg.RecommenderRateLimit = 0
	return cfg
}

func envKey(s string) string {
	return strings.ToLower(s)
}

func (c *Config) validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := toSnakeCase(fe.StructField())
		if fe.Tag() == "required" {
			return errors.Errorf("missing required config: set %s or %s in the config file", strings.ToUpper(key), key)
		}
		fields = append(fields, key+" ("+fe.Tag()+")")
	}
	return errors.Errorf("invalid config: %s", strings.Join(fields, ", "))
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
