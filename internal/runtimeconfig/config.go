package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStorageDriverUnknown   = errors.New("pagetree config: storage driver is invalid")
	ErrStorageDSNRequired     = errors.New("pagetree config: storage dsn is required")
	ErrCacheProviderUnknown   = errors.New("pagetree config: inventory cache provider is invalid")
	ErrCacheTTLInvalid        = errors.New("pagetree config: inventory cache ttl must be zero or positive")
	ErrRedisAddrRequired      = errors.New("pagetree config: redis address is required for the redis cache provider")
	ErrLoggingProviderUnknown = errors.New("pagetree config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("pagetree config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("pagetree config: logging format is invalid")
	ErrHTTPAddrRequired       = errors.New("pagetree config: http address is required")
	ErrTemplatesRequired      = errors.New("pagetree config: at least one template is required")
	ErrTemplateKeyRequired    = errors.New("pagetree config: template key is required")
	ErrTemplateDuplicate      = errors.New("pagetree config: template key declared twice")
	ErrRegionKeyRequired      = errors.New("pagetree config: region key is required")
	ErrContentKindRequired    = errors.New("pagetree config: content type kind is required")
)

// Config aggregates the settings needed to assemble a page tree module.
type Config struct {
	Storage      StorageConfig       `mapstructure:"storage"`
	Cache        CacheConfig         `mapstructure:"cache"`
	Logging      LoggingConfig       `mapstructure:"logging"`
	HTTP         HTTPConfig          `mapstructure:"http"`
	Registry     RegistryConfig      `mapstructure:"registry"`
	Templates    []TemplateConfig    `mapstructure:"templates"`
	ContentTypes []ContentTypeConfig `mapstructure:"content_types"`
}

// StorageConfig selects the database. An empty Driver keeps everything in
// memory.
type StorageConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	Migrate      bool   `mapstructure:"migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// CacheConfig controls the content type inventory cache.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Provider  string        `mapstructure:"provider"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig captures provider specific options for runtime logging.
type LoggingConfig struct {
	Provider  string `mapstructure:"provider"`
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type RegistryConfig struct {
	RequireSealed bool `mapstructure:"require_sealed"`
}

// TemplateConfig declares a page template and its regions in display order.
type TemplateConfig struct {
	Key         string         `mapstructure:"key"`
	Title       string         `mapstructure:"title"`
	Path        string         `mapstructure:"path"`
	Singleton   bool           `mapstructure:"singleton"`
	EnforceLeaf bool           `mapstructure:"enforce_leaf"`
	Regions     []RegionConfig `mapstructure:"regions"`
}

type RegionConfig struct {
	Key       string `mapstructure:"key"`
	Title     string `mapstructure:"title"`
	Inherited bool   `mapstructure:"inherited"`
}

// ContentTypeConfig binds one shipped content kind with its options.
type ContentTypeConfig struct {
	Kind    string         `mapstructure:"kind"`
	Options map[string]any `mapstructure:"options"`
}

// DefaultConfig returns an in-memory setup with a single standard template.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Migrate: true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Provider: "memory",
			TTL:      10 * time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Registry: RegistryConfig{
			RequireSealed: true,
		},
		Templates: []TemplateConfig{
			{
				Key:   "standard",
				Title: "Standard page",
				Regions: []RegionConfig{
					{Key: "main", Title: "Main content"},
					{Key: "sidebar", Title: "Sidebar", Inherited: true},
				},
			},
		},
		ContentTypes: []ContentTypeConfig{
			{Kind: "richtext"},
			{Kind: "markdown"},
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Driver) {
	case "":
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled {
		switch normalize(cfg.Cache.Provider) {
		case "", "memory":
		case "redis":
			if strings.TrimSpace(cfg.Cache.Redis.Addr) == "" {
				return ErrRedisAddrRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheProviderUnknown, cfg.Cache.Provider)
		}
		if cfg.Cache.TTL < 0 {
			return ErrCacheTTLInvalid
		}
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider != "console" && provider != "" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}

	if len(cfg.Templates) == 0 {
		return ErrTemplatesRequired
	}
	seen := make(map[string]struct{}, len(cfg.Templates))
	for i, tpl := range cfg.Templates {
		key := strings.TrimSpace(tpl.Key)
		if key == "" {
			return fmt.Errorf("%w: templates[%d]", ErrTemplateKeyRequired, i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", ErrTemplateDuplicate, key)
		}
		seen[key] = struct{}{}
		for j, region := range tpl.Regions {
			if strings.TrimSpace(region.Key) == "" {
				return fmt.Errorf("%w: templates[%s].regions[%d]", ErrRegionKeyRequired, key, j)
			}
		}
	}

	for i, ct := range cfg.ContentTypes {
		if strings.TrimSpace(ct.Kind) == "" {
			return fmt.Errorf("%w: content_types[%d]", ErrContentKindRequired, i)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "console", "gologger", "zerolog":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
