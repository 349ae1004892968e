package providers

import (
	"errors"
	"fmt"
)

// TransientError marks a failure that was worth retrying and still did
// not succeed, such as timeouts, rate limits or server errors.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient service error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient reports whether err is a transient service failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// PermanentError marks a rejection that retrying cannot fix, such as an
// invalid API key or an unsupported payload.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent service error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError wraps err as permanent.
func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is a permanent service rejection.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// QuotaError marks an exhausted account quota. Further calls will keep
// failing, so the whole run should stop.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %v", e.Err)
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

// NewQuotaError wraps err as a quota exhaustion.
func NewQuotaError(err error) *QuotaError {
	return &QuotaError{Err: err}
}

// IsQuota reports whether err signals an exhausted quota.
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}
