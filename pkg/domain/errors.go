package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal operation failures. The transport layer maps
// kinds to status codes through an explicit table; nothing dispatches on
// dynamic error types beyond this closed enumeration.
type ErrorKind string

const (
	// KindValidation marks a required field missing or empty on create or
	// full replace. The store is never consulted.
	KindValidation ErrorKind = "validation"
	// KindNotFound marks an identifier that failed to parse or a record that
	// does not exist. Uniform across get, replace, patch, and delete.
	KindNotFound ErrorKind = "not_found"
	// KindStore marks a failure signalled by the store adapter, propagated
	// unchanged with no retry and no rollback.
	KindStore ErrorKind = "store"
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing record or an unparseable identifier.
type NotFoundError struct {
	Key string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.Key)
}

// StoreError wraps a failure from the store adapter.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap exposes the adapter error for errors.Is/As inspection.
func (e StoreError) Unwrap() error { return e.Err }

// KindOf classifies an error into the closed taxonomy. The second return is
// false for errors outside it.
func KindOf(err error) (ErrorKind, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return KindValidation, true
	}
	var nf NotFoundError
	if errors.As(err, &nf) {
		return KindNotFound, true
	}
	var se StoreError
	if errors.As(err, &se) {
		return KindStore, true
	}
	return "", false
}
