package regions

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateKeyRequired   = errors.New("regions: template key is required")
	ErrTemplateExists        = errors.New("regions: template already registered")
	ErrTemplateHasNoRegions  = errors.New("regions: template must declare at least one region")
	ErrRegionKeyRequired     = errors.New("regions: region key is required")
	ErrRegionDuplicate       = errors.New("regions: region declared twice in the same template")
	ErrRegionConflict        = errors.New("regions: region redeclared with a different inherited flag")
	ErrRepositoryUnavailable = errors.New("regions: repository not configured")
)

// ConflictError reports a region whose inherited flag disagrees with an
// earlier declaration.
type ConflictError struct {
	Region   string
	Template string
	Existing bool
	Declared bool
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("regions: template %q declares region %q inherited=%t, already registered with inherited=%t",
		e.Template, e.Region, e.Declared, e.Existing)
}

func (e *ConflictError) Unwrap() error { return ErrRegionConflict }

// NotFoundError is returned when a region or template cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
