package pagetree

import "github.com/goliatone/go-pagetree/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrCacheProviderUnknown   = runtimeconfig.ErrCacheProviderUnknown
	ErrRedisAddrRequired      = runtimeconfig.ErrRedisAddrRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrTemplatesRequired      = runtimeconfig.ErrTemplatesRequired
	ErrContentKindRequired    = runtimeconfig.ErrContentKindRequired
)

type (
	Config            = runtimeconfig.Config
	StorageConfig     = runtimeconfig.StorageConfig
	CacheConfig       = runtimeconfig.CacheConfig
	RedisConfig       = runtimeconfig.RedisConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
	HTTPConfig        = runtimeconfig.HTTPConfig
	RegistryConfig    = runtimeconfig.RegistryConfig
	TemplateConfig    = runtimeconfig.TemplateConfig
	RegionConfig      = runtimeconfig.RegionConfig
	ContentTypeConfig = runtimeconfig.ContentTypeConfig
)

// DefaultConfig returns an in-memory setup with a single standard template.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
