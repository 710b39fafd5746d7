package contenttypes

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/validation"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// Registry tracks the concrete content types bound to each base. It is
// populated during bootstrap, sealed, and only read afterwards.
type Registry struct {
	mu     sync.RWMutex
	types  map[string][]*Type
	sealed bool
	logger interfaces.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

func WithLogger(logger interfaces.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logging.Ensure(logger)
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		types:  make(map[string][]*Type),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateContentType binds class to base and appends the resulting type to the
// base's type list. Registering the same class with equal options again
// returns the existing type.
func (r *Registry) CreateContentType(base *Base, class Class, opts Options) (*Type, error) {
	if class == nil {
		return nil, ErrClassRequired
	}
	if base == nil {
		return nil, ErrBaseRequired
	}
	if bound, ok := class.(*Type); ok {
		return nil, &ConfigurationError{Base: base.Name, Class: bound.Name(), Err: ErrClassNotAbstract}
	}

	name := normalizeName(class.Name())
	if name == "" {
		return nil, ErrClassNameRequired
	}
	if !base.hasTemplates() {
		return nil, &ConfigurationError{Base: base.Name, Class: name, Err: ErrBaseWithoutTemplates}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.types[base.Name] {
		if existing.name != name {
			continue
		}
		if sameRecordType(existing.NewRecord(), class.NewRecord()) && optionsEqual(existing.options, opts) {
			return existing, nil
		}
		return nil, &ConfigurationError{Base: base.Name, Class: name, Err: ErrTypeConflict}
	}
	if r.sealed {
		return nil, &ConfigurationError{Base: base.Name, Class: name, Err: ErrRegistrySealed}
	}

	if err := initializeClass(class, opts); err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, &ConfigurationError{Base: base.Name, Class: name, Option: cfgErr.Option, Err: cfgErr.Err}
		}
		return nil, &ConfigurationError{Base: base.Name, Class: name, Err: err}
	}

	t := &Type{
		base:    base,
		class:   class,
		name:    name,
		table:   tableName(base.Name, name),
		index:   len(r.types[base.Name]),
		options: maps.Clone(opts),
	}
	r.types[base.Name] = append(r.types[base.Name], t)

	r.logger.Debug("registry.content_type.created",
		"base", base.Name,
		"content_type", name,
		"table", t.table,
		"index", t.index,
	)
	return t, nil
}

// initializeClass validates opts against the class schema and runs the class
// initializer.
func initializeClass(class Class, opts Options) error {
	if provider, ok := class.(OptionsSchemaProvider); ok {
		if schema := provider.OptionsSchema(); len(schema) > 0 {
			if err := validation.ValidateOptions(schema, opts); err != nil {
				var optsErr *validation.OptionsError
				if errors.As(err, &optsErr) && len(optsErr.Missing) > 0 {
					return MissingOption(optsErr.Missing[0])
				}
				return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
			}
		}
	}
	if initializer, ok := class.(TypeInitializer); ok {
		return initializer.InitializeType(maps.Clone(opts))
	}
	return nil
}

// Types lists the types bound to base in registration order.
func (r *Registry) Types(base string) []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Type(nil), r.types[normalizeName(base)]...)
}

// Type looks up a single type by base and class name.
func (r *Registry) Type(base, name string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name = normalizeName(name)
	for _, t := range r.types[normalizeName(base)] {
		if t.name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrTypeNotFound, base, name)
}

// Seal marks the registry as fully loaded. New registrations fail afterwards;
// idempotent re-registrations still return the existing type.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func optionsEqual(a, b Options) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]any(a), map[string]any(b))
}

func sameRecordType(a, b Content) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}
