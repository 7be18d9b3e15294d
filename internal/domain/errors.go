package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrValidation      = errors.New("validation failed")
	ErrFetch           = errors.New("fetch failed")
	ErrExternalService = errors.New("external service failure")
	ErrStorage         = errors.New("storage failure")
)

// ValidationError reports a missing or out-of-range request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FetchError is returned when a remote image cannot be downloaded. StatusCode
// is zero for network level failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return "fetch " + e.URL + ": failed"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ExternalServiceError wraps a non-success answer from the vision or image
// generation model. Detail keeps the upstream message verbatim.
type ExternalServiceError struct {
	Service string
	Stage   string
	Detail  string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	msg := e.Service + " " + e.Stage + " failed"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) Is(target error) bool { return target == ErrExternalService }

// StorageError is a failure of the file store or the history/settings store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage " + e.Op + " failed"
	}
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
