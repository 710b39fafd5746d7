package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

const (
	rootModule     = "pagetree"
	pagesModule    = "pagetree.pages"
	resolverModule = "pagetree.resolver"
	contentModule  = "pagetree.content"
	registryModule = "pagetree.registry"
	proxyModule    = "pagetree.proxy"
	httpModule     = "pagetree.http"
)

const (
	fieldPageID    = "page_id"
	fieldPageURL   = "cached_url"
	fieldRegionKey = "region"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return logger.WithFields(map[string]any{
		"module": module,
	})
}

// PagesLogger returns the logger namespace reserved for page mutations.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// ResolverLogger returns the logger namespace reserved for path resolution.
func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

// ContentLogger returns the logger namespace reserved for content item services.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// RegistryLogger returns the logger namespace used while bootstrapping
// templates, regions and content types.
func RegistryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, registryModule)
}

func ProxyLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, proxyModule)
}

func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithPageContext enriches the logger with the page identifier, its cached URL
// and the region being read. Empty values are skipped.
func WithPageContext(logger interfaces.Logger, pageID, cachedURL, region string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(pageID); trimmed != "" {
		fields[fieldPageID] = trimmed
	}
	if trimmed := strings.TrimSpace(cachedURL); trimmed != "" {
		fields[fieldPageURL] = trimmed
	}
	if trimmed := strings.TrimSpace(region); trimmed != "" {
		fields[fieldRegionKey] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
