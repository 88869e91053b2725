// Package apperr defines the error taxonomy shared by services and
// handlers. Services return these instead of raw store errors; handlers map
// them to HTTP status codes and a uniform JSON envelope.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means no owner context is attached to the request.
	ErrUnauthenticated = errors.New("Nicht authentifiziert")

	// ErrSettingsRequired blocks invoice creation and PDF export until the
	// owner has configured company settings.
	ErrSettingsRequired = errors.New("Bitte richten Sie zunächst Ihre Firmendaten ein")

	// ErrInvalidCredentials is returned on login failure without revealing
	// whether the email exists.
	ErrInvalidCredentials = errors.New("Ungültige E-Mail-Adresse oder Passwort")

	// ErrNotFound means the record does not exist for this owner.
	ErrNotFound = errors.New("Nicht gefunden")
)

// ValidationError carries the first violated field's user-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation wraps a German validation message as an error.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError signals a business-rule conflict, e.g. deleting a customer
// that still has invoices or an illegal status transition.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict wraps a German conflict message as an error.
func Conflict(message string) error {
	return &ConflictError{Message: message}
}

// PersistenceError hides a failed store operation behind a user-facing
// message while keeping the cause for logging.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string { return e.Message }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps a store error with a German user-facing message.
func Persistence(message string, err error) error {
	return &PersistenceError{Message: message, Err: err}
}

// HTTPStatus maps an error from the taxonomy to its boundary status code.
// Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var ce *ConflictError
	var pe *PersistenceError

	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSettingsRequired):
		return http.StatusBadRequest
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &pe):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
