package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/bmu-faultfinder/internal/pkg/errors"
)

const (
	CodeNotFound        = "not_found"
	CodeValidation      = "validation_error"
	CodeCatalogConfig   = "catalog_config_error"
	CodeInternal        = "internal_error"
	CodePayloadTooLarge = "payload_too_large"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), pkgerrors.ErrNotFound))
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), pkgerrors.ErrInvalidArgument))
}

func TooLarge(format string, args ...interface{}) *Error {
	return New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, fmt.Errorf(format, args...))
}

func Config(err error) *Error {
	return New(http.StatusInternalServerError, CodeCatalogConfig, err)
}

// From maps any error onto an *Error, defaulting to a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, CodeValidation, err)
	case errors.Is(err, pkgerrors.ErrConfiguration):
		return Config(err)
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}

func IsNotFound(err error) bool   { return errors.Is(err, pkgerrors.ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, pkgerrors.ErrInvalidArgument) }
