// Package apperr centraliza los tipos de error que cruzan capas (dominio -> adapters -> HTTP).
//
// Cada error estructurado hace Unwrap a un sentinel, así los callers pueden usar
// errors.Is(err, apperr.ErrConflict) sin conocer el tipo concreto.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// NotFoundError: la entidad no existe o está soft-deleted.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError: violación de invariante o colisión de escritura concurrente.
// Retryable indica que el mismo request podría pasar si se reintenta (timeouts, deadlocks).
type ConflictError struct {
	Reason    string
	Retryable bool
	Err       error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflict: %s: %v", e.Reason, e.Err)
	}
	return "conflict: " + e.Reason
}

func (e *ConflictError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConflict, e.Err}
	}
	return []error{ErrConflict}
}

// ValidationError: input mal formado, se rechaza antes de tocar storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// Transient envuelve fallas de la capa transaccional (lock timeout, deadlock, busy).
func Transient(reason string, err error) error {
	return &ConflictError{Reason: reason, Retryable: true, Err: err}
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsRetryable: todo conflicto es rechazable por el caller, pero solo los transitorios
// tienen chance real de pasar en un reintento.
func IsRetryable(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// HTTPStatus mapea el error al status que devuelven los handlers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
