package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrBackdated        = errors.New("date cannot be before today")
	ErrInvalidAcres     = errors.New("acres must be greater than zero")
	ErrCostMismatch     = errors.New("cost does not match acres")
	ErrEmptyCustomer    = errors.New("empty customer")
	ErrEmptyLocation    = errors.New("empty location")
	ErrEmptyTractor     = errors.New("empty tractor")
	ErrEmptyEmployee    = errors.New("empty employee")
	ErrInvalidRole      = errors.New("invalid role")
	ErrAuth             = errors.New("invalid credentials or role mismatch")
	ErrIOFailure        = errors.New("store io failure")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrRender           = errors.New("render failed")
)

// ValidationError rejects a submitted entry. Nothing is saved.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError reports a failure of the underlying record medium.
// Writes match ErrIOFailure, reads match ErrStoreUnavailable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrIOFailure:
		return e.Op != OpLoad
	case ErrStoreUnavailable:
		return e.Op == OpLoad
	}
	return false
}

// Store operations named in StoreError.Op.
const (
	OpLoad   = "load"
	OpAppend = "append"
)

// RenderError aborts a report export; Stage names the failing section.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }
