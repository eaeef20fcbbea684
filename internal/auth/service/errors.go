package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrConflict              = errors.New("conflict")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInactiveAccount       = errors.New("account is not active")
	ErrForbidden             = errors.New("forbidden")
)

// ValidationError carries per-field messages keyed by the JSON field name.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ConflictError names the unique field that is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already in use", e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// fromValidation converts ozzo errors. Internal rule failures are returned
// unchanged so they surface as server errors.
func fromValidation(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return err
		}
		return &ValidationError{Fields: map[string]string{"": err.Error()}}
	}

	fields := make(map[string]string, len(errs))
	for k, v := range errs {
		if v == nil {
			continue
		}
		var internal validation.InternalError
		if errors.As(v, &internal) {
			return internal
		}
		fields[k] = v.Error()
	}
	return &ValidationError{Fields: fields}
}
