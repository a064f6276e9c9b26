package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ValidationError carries per-field messages; nothing was persisted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field and returns the error for chaining.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
	return e
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func newValidationError(field, msg string) *ValidationError {
	return (&ValidationError{}).Add(field, msg)
}

// StateConflictError means the operation is not allowed in the current state.
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string { return e.Message }

func conflict(format string, args ...interface{}) *StateConflictError {
	return &StateConflictError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

type PermissionError struct {
	Permission string
}

func (e *PermissionError) Error() string {
	return "permission denied: " + e.Permission
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFoundError and wraps anything else.
func notFoundOr(err error, entity string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return errors.Wrapf(err, "load %s", entity)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// duplicateOr turns unique-key violations into a ValidationError on field.
func duplicateOr(err error, field, what string) error {
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return newValidationError(field, what+" already exists")
	}
	return err
}
