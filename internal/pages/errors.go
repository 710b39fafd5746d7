package pages

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrPageNotFound          = errors.New("pages: page not found")
	ErrPageRequired          = errors.New("pages: page id required")
	ErrParentNotFound        = errors.New("pages: parent page not found")
	ErrPageParentCycle       = errors.New("pages: parent assignment creates hierarchy cycle")
	ErrInvalidMove           = errors.New("pages: page cannot be moved below itself or its descendants")
	ErrParentIsLeaf          = errors.New("pages: parent template does not allow children")
	ErrLeafHasChildren       = errors.New("pages: template does not allow children but page has some")
	ErrPageHasChildren       = errors.New("pages: page has children")
	ErrTemplateUnknown       = errors.New("pages: template not found")
	ErrURLCollision          = errors.New("pages: url already used by another active page")
	ErrSingletonTemplate     = errors.New("pages: template may only be used once")
	ErrScheduleWindowInvalid = errors.New("pages: publish_at must be before unpublish_at")
	ErrInvalidPage           = errors.New("pages: invalid page")
	ErrRepositoryUnavailable = errors.New("pages: repository not configured")
)

// NotFoundError reports a page lookup miss by id or path.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Key == "" {
		return ErrPageNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPageNotFound.Error(), e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrPageNotFound }

// ValidationError carries field keyed errors for a rejected save.
type ValidationError struct {
	Fields validation.Errors
	Err    error
}

func newValidationError(err error, field, code, message string) *ValidationError {
	return &ValidationError{
		Fields: validation.Errors{field: validation.NewError(code, message)},
		Err:    err,
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Fields.Error())
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Field returns the message recorded for field.
func (e *ValidationError) Field(field string) (string, bool) {
	err, ok := e.Fields[field]
	if !ok || err == nil {
		return "", false
	}
	return err.Error(), true
}
