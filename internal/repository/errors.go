package repository

import (
	"fmt"
)

// Kind classifies store failures so callers can branch on error families
// (e.g. an HTTP layer mapping not-found to 404) without matching messages.
type Kind string

const (
	KindNotFound Kind = "not_found"
	KindFailure  Kind = "failure"
	KindRollback Kind = "rollback"
	KindUnknown  Kind = "unknown"
)

// Kind-only sentinels for errors.Is checks.
var (
	ErrNotFound = &StoreError{Kind: KindNotFound}
	ErrRollback = &StoreError{Kind: KindRollback}
)

type StoreError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		if e.Op == "" {
			return string(e.Kind)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches any StoreError of the same kind, so
// errors.Is(err, ErrNotFound) works regardless of which record was missing.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	return ok && t.Kind == e.Kind
}

func notFound(op string) error {
	return &StoreError{Kind: KindNotFound, Op: op}
}

func storeErr(op string, err error) error {
	return &StoreError{Kind: KindFailure, Op: op, Err: err}
}

func rollbackErr(op string, err error) error {
	return &StoreError{Kind: KindRollback, Op: op, Err: err}
}
