package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrUpstream        = errors.New("upstream failure")
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// ConflictError carries detail about the conflicting resource, e.g. the
// account that already redeemed an activation code.
type ConflictError struct {
	Message string
	UsedBy  string // prior redeemer, when the conflict is a used code
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// QuotaExceededError carries used/limit context so callers can render a
// helpful denial message.
type QuotaExceededError struct {
	Reason string
	Used   int
	Limit  int
}

func (e *QuotaExceededError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("daily quota exceeded (%d/%d)", e.Used, e.Limit)
}

// Is allows errors.Is() to match against ErrQuotaExceeded
func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
