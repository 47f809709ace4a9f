package domain

import "errors"

var (
	// ErrValidation marks client-side input problems that block a submission.
	ErrValidation = errors.New("validation error")
	// ErrAlreadySubmitting marks a submit attempted while another one is in flight.
	ErrAlreadySubmitting = errors.New("already submitting")
	// ErrNetwork marks transport or backend failures.
	ErrNetwork = errors.New("network error")
	// ErrSchemaViolation marks a success response that does not satisfy the contract.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrInvariantViolation marks an illegal stop-list edit.
	ErrInvariantViolation = errors.New("invariant violation")
)

// Kind names a failure class so callers can tell failures apart.
type Kind string

const (
	KindNone               Kind = ""
	KindValidation         Kind = "ValidationError"
	KindAlreadySubmitting  Kind = "AlreadySubmitting"
	KindNetwork            Kind = "NetworkError"
	KindSchemaViolation    Kind = "SchemaViolation"
	KindInvariantViolation Kind = "InvariantViolation"
	KindUnknown            Kind = "Unknown"
)

// KindOf maps an error to its failure Kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAlreadySubmitting):
		return KindAlreadySubmitting
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrSchemaViolation):
		return KindSchemaViolation
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariantViolation
	default:
		return KindUnknown
	}
}
