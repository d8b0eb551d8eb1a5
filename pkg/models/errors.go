package models

import "fmt"

// InputError means the caller supplied nothing to operate on (empty
// file merge, empty formula).
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }

// ValidationError means a RatioDefinition failed required-field or
// enum checks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DuplicateIDError means a custom ratio id collided on add.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("ratio id '%s' already exists", e.ID)
}

// FormulaSyntaxError means a formula could not be parsed or contains
// tokens that are neither numbers nor registered variables.
type FormulaSyntaxError struct {
	Formula string
	Reason  string
}

func (e *FormulaSyntaxError) Error() string {
	return fmt.Sprintf("formula %q: %s", e.Formula, e.Reason)
}

// TransportError wraps a boundary I/O failure (network, storage). It
// is always recoverable by retry and never corrupts in-memory state.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
