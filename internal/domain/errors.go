package domain

import (
	"errors"
	"fmt"
)

// Domain-level errors
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrDimensionNotFound  = errors.New("dimension not found")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrEmptyPatch         = errors.New("patch has no fields")
	ErrUnknownSettingsKey = errors.New("unknown settings key")
)

// EntityKind names a table of the catalog repository
type EntityKind string

const (
	KindProducts   EntityKind = "products"
	KindCategories EntityKind = "categories"
	KindSettings   EntityKind = "store_settings"
)

// WriteError is returned when a repository mutation fails. Local state is left
// unchanged when it is returned.
type WriteError struct {
	Op     string
	Entity EntityKind
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("unable to %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError wraps err unless it is nil
func NewWriteError(op string, entity EntityKind, err error) error {
	if err == nil {
		return nil
	}
	return &WriteError{Op: op, Entity: entity, Err: err}
}
