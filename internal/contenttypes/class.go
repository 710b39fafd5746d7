package contenttypes

import (
	"maps"
	"strings"

	"github.com/goliatone/go-slug"
)

// Options are the keyword options a content type is registered with.
type Options map[string]any

// Class is an unbound content kind: a record shape that has not been attached
// to a base yet. Classes are turned into concrete types by
// Registry.CreateContentType.
type Class interface {
	Name() string
	NewRecord() Content
	NewRecordSet() RecordSet
}

// RecordSet is a typed slice the stores scan rows into.
type RecordSet interface {
	Model() any
	Items() []Content
}

// TypeInitializer is implemented by classes that inspect their registration
// options and fail fast when a required option is missing.
type TypeInitializer interface {
	InitializeType(opts Options) error
}

// OptionsSchemaProvider is implemented by classes that describe their
// registration options with a JSON schema.
type OptionsSchemaProvider interface {
	OptionsSchema() map[string]any
}

// ClassOption configures a class built with Define.
type ClassOption func(*classConfig)

type classConfig struct {
	initializer func(Options) error
	schema      map[string]any
}

// WithInitializer installs the registration hook for the class.
func WithInitializer(fn func(Options) error) ClassOption {
	return func(c *classConfig) {
		c.initializer = fn
	}
}

// WithOptionsSchema declares the JSON schema registration options must match.
func WithOptionsSchema(schema map[string]any) ClassOption {
	return func(c *classConfig) {
		c.schema = maps.Clone(schema)
	}
}

// Define declares a class for the record struct T. *T must implement Content,
// usually by embedding Item.
func Define[T any, P interface {
	*T
	Content
}](name string, opts ...ClassOption) Class {
	cfg := classConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &definedClass[T, P]{name: normalizeName(name), cfg: cfg}
}

type definedClass[T any, P interface {
	*T
	Content
}] struct {
	name string
	cfg  classConfig
}

func (c *definedClass[T, P]) Name() string { return c.name }

func (c *definedClass[T, P]) NewRecord() Content {
	return P(new(T))
}

func (c *definedClass[T, P]) NewRecordSet() RecordSet {
	return &recordSet[T, P]{}
}

func (c *definedClass[T, P]) InitializeType(opts Options) error {
	if c.cfg.initializer == nil {
		return nil
	}
	return c.cfg.initializer(opts)
}

func (c *definedClass[T, P]) OptionsSchema() map[string]any {
	return c.cfg.schema
}

type recordSet[T any, P interface {
	*T
	Content
}] struct {
	rows []T
}

func (s *recordSet[T, P]) Model() any { return &s.rows }

func (s *recordSet[T, P]) Items() []Content {
	out := make([]Content, len(s.rows))
	for i := range s.rows {
		out[i] = P(&s.rows[i])
	}
	return out
}

// normalizeName turns a display name into an identifier usable in table names.
func normalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" {
		normalized = strings.ToLower(trimmed)
	}
	return strings.ReplaceAll(normalized, "-", "_")
}
