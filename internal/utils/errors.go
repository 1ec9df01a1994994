package utils

import "errors"

// Field-level validation codes. These are recovered into a ValidationResult
// and never returned as hard failures from validation.
var (
	ErrMissingField     = errors.New("MISSING_FIELD")
	ErrFormat           = errors.New("FORMAT_ERROR")
	ErrInvalidAmount    = errors.New("INVALID_AMOUNT")
	ErrInvalidSelection = errors.New("INVALID_SELECTION")
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
)

// Common application errors used across services.
var (
	ErrUnknownService       = errors.New("UNKNOWN_SERVICE")
	ErrUnknownProvider      = errors.New("UNKNOWN_PROVIDER")
	ErrUnknownCategory      = errors.New("UNKNOWN_CATEGORY")
	ErrPlanNotFound         = errors.New("PLAN_NOT_FOUND")
	ErrUnknownBank          = errors.New("UNKNOWN_BANK")
	ErrUnsupportedMethod    = errors.New("UNSUPPORTED_METHOD")
	ErrSessionNotFound      = errors.New("SESSION_NOT_FOUND")
	ErrSessionClosed        = errors.New("SESSION_CLOSED")
	ErrSubmissionInProgress = errors.New("SUBMISSION_IN_PROGRESS")
	ErrSubmissionFailed     = errors.New("SUBMISSION_FAILED")
)
