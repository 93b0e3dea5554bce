// Package apperr holds the error kinds shared by the core and the services.
// Callers wrap them with fmt.Errorf("...: %w", ErrX) and match with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound means a referenced entity is absent. Not retried.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the request links or shapes entities in a way the
	// model does not allow, e.g. chaining answers of different questions.
	ErrValidation = errors.New("validation error")

	// ErrConflict means a concurrent writer won a chain-link race. The caller
	// should retry the whole operation.
	ErrConflict = errors.New("conflict")

	// ErrIntegrity means stored state is corrupted: a cycle or a runaway chain.
	ErrIntegrity = errors.New("integrity error")

	// ErrSchedulingUnavailable means the friend graph could not be covered from
	// the chosen seed. Recoverable by re-seeding.
	ErrSchedulingUnavailable = errors.New("scheduling unavailable")

	// ErrForbidden means the acting user may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)
