package controllers

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrDecisionRequired matches every *DecisionRequiredError
	ErrDecisionRequired = errors.New("finale decision required")
	// ErrNotFound is returned when the schedule item does not exist for the owner
	ErrNotFound = errors.New("schedule item not found")
)

// ValidationError rejects input before any store mutation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// DecisionRequiredError asks the caller whether the session was the finale.
// Re-invoke Complete with a non-nil finale decision.
type DecisionRequiredError struct {
	ScheduleID uint64
	TitleID    uint64
}

func (e *DecisionRequiredError) Error() string {
	return fmt.Sprintf("schedule %d: title %d is recurring, finale decision required", e.ScheduleID, e.TitleID)
}

func (e *DecisionRequiredError) Is(target error) bool { return target == ErrDecisionRequired }

// StoreError wraps a persistence failure unchanged
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
