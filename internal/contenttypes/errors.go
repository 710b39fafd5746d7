package contenttypes

import (
	"errors"
	"fmt"
)

var (
	ErrClassRequired        = errors.New("contenttypes: content class is required")
	ErrClassNameRequired    = errors.New("contenttypes: content class name is required")
	ErrClassNotAbstract     = errors.New("contenttypes: content class is already bound to a base")
	ErrBaseRequired         = errors.New("contenttypes: base is required")
	ErrBaseWithoutTemplates = errors.New("contenttypes: base has no templates registered")
	ErrMissingOption        = errors.New("contenttypes: required option missing")
	ErrInvalidOptions       = errors.New("contenttypes: invalid options")
	ErrTypeConflict         = errors.New("contenttypes: content type already registered with different options")
	ErrRegistrySealed       = errors.New("contenttypes: registry is sealed")
	ErrTypeNotFound         = errors.New("contenttypes: content type not found")
	ErrItemNotFound         = errors.New("contenttypes: content item not found")
	ErrUnknownRegion        = errors.New("contenttypes: region not declared by the page template")
	ErrItemTypeMismatch     = errors.New("contenttypes: record does not belong to content type")
	ErrStoreUnavailable     = errors.New("contenttypes: store not configured")
)

// ConfigurationError reports a registration failure for one content type.
// Option is set when a required option was not supplied.
type ConfigurationError struct {
	Base   string
	Class  string
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	target := e.Class
	if e.Base != "" {
		target = e.Base + "." + e.Class
	}
	if e.Option != "" {
		return fmt.Sprintf("contenttypes: %s: missing required option %q", target, e.Option)
	}
	if e.Err != nil {
		return fmt.Sprintf("contenttypes: %s: %v", target, e.Err)
	}
	return fmt.Sprintf("contenttypes: %s: configuration error", target)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// MissingOption is returned by type initializers that require option.
func MissingOption(option string) error {
	return &ConfigurationError{Option: option, Err: ErrMissingOption}
}

// ItemNotFoundError identifies the missing record.
type ItemNotFoundError struct {
	Type string
	ID   string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("%s item %q not found", e.Type, e.ID)
}

func (e *ItemNotFoundError) Unwrap() error { return ErrItemNotFound }
