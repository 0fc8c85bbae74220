// Path: internal/config/config.go
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Search  SearchConfig
	Storage StorageConfig
	Log     LogConfig
}

// ServerConfig holds the API server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// CatalogConfig holds settings for the upstream catalog API client.
type CatalogConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
	BurstLimit        int    `mapstructure:"burst_limit"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	// EvolutionFanoutLimit caps the follow-up lookups issued per evolution
	// chain or forms resolution.
	EvolutionFanoutLimit   int `mapstructure:"evolution_fanout_limit"`
	RefreshIntervalMinutes int `mapstructure:"refresh_interval_minutes"`
}

// SearchConfig holds the search view settings.
type SearchConfig struct {
	PageSize   int `mapstructure:"page_size"`
	DebounceMS int `mapstructure:"debounce_ms"`
}

// StorageConfig selects and configures the key-value slot backend.
type StorageConfig struct {
	Driver          string `mapstructure:"driver"` // sqlite, mongo or memory
	SQLitePath      string `mapstructure:"sqlite_path"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads the configuration from file and environment variables.
// configPath may be empty, in which case ./configs/config.yaml is used if present.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("CATALOG.BASE_URL", "https://tyradex.vercel.app/api/v1")
	v.SetDefault("CATALOG.REQUESTS_PER_SECOND", 5)
	v.SetDefault("CATALOG.BURST_LIMIT", 10)
	v.SetDefault("CATALOG.TIMEOUT_SECONDS", 30)
	v.SetDefault("CATALOG.EVOLUTION_FANOUT_LIMIT", 10)
	v.SetDefault("CATALOG.REFRESH_INTERVAL_MINUTES", 60)
	v.SetDefault("SEARCH.PAGE_SIZE", 12)
	v.SetDefault("SEARCH.DEBOUNCE_MS", 300)
	v.SetDefault("STORAGE.DRIVER", "sqlite")
	v.SetDefault("STORAGE.SQLITE_PATH", "pokedex.db")
	v.SetDefault("STORAGE.MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("STORAGE.MONGO_DATABASE", "pokedex")
	v.SetDefault("STORAGE.MONGO_COLLECTION", "kv")
	v.SetDefault("LOG.LEVEL", "info")
	v.SetDefault("LOG.DEVELOPMENT", false)

	// Load from config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err // Only return error if it's not a "file not found" error
		}
	}

	// Load from environment variables, e.g. POKEDEX_CATALOG_BASE_URL
	v.SetEnvPrefix("POKEDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Catalog.BaseURL == "" {
		errs = append(errs, errors.New("catalog.base_url is required"))
	}
	if c.Search.PageSize < 1 {
		errs = append(errs, errors.New("search.page_size must be at least 1"))
	}
	if c.Search.DebounceMS < 0 {
		errs = append(errs, errors.New("search.debounce_ms must not be negative"))
	}
	if c.Catalog.EvolutionFanoutLimit < 0 {
		errs = append(errs, errors.New("catalog.evolution_fanout_limit must not be negative"))
	}
	switch c.Storage.Driver {
	case "sqlite", "mongo", "memory":
	default:
		errs = append(errs, errors.New("storage.driver must be one of sqlite, mongo, memory"))
	}
	return errors.Join(errs...)
}
