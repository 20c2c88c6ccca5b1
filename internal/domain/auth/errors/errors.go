package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidSession     = errors.New("invalid session")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
)

// TokenError is returned by the token codec for every verification failure.
// Its message never says which check failed; Unwrap keeps the reason for logs.
type TokenError struct {
	Reason error
}

func (e *TokenError) Error() string { return ErrInvalidToken.Error() }

func (e *TokenError) Is(target error) bool { return target == ErrInvalidToken }

func (e *TokenError) Unwrap() error { return e.Reason }

func NewTokenError(reason error) error {
	return &TokenError{Reason: reason}
}

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func NewAlreadyExists(msg string) error {
	return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
}

// NewValidation reports a request that is well formed but semantically
// unacceptable. msg is safe to show to the client.
func NewValidation(msg string) error {
	return &ValidationError{Detail: msg}
}

type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return ErrValidation.Error() + ": " + e.Detail }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ValidationDetail returns the client-facing message of a validation error.
func ValidationDetail(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Detail
	}
	return err.Error()
}

// ForbiddenError names the permission rule that denied an operation.
type ForbiddenError struct {
	Rule string
}

func (e *ForbiddenError) Error() string { return ErrForbidden.Error() + ": " + e.Rule }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func NewForbidden(rule string) error {
	return &ForbiddenError{Rule: rule}
}

// NewInvalidSession collapses cause into ErrInvalidSession while keeping it in the chain.
func NewInvalidSession(cause error) error {
	if cause == nil {
		return ErrInvalidSession
	}
	return fmt.Errorf("%w: %w", ErrInvalidSession, cause)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

// ForbiddenRule returns the rule text carried by err, or a generic message.
func ForbiddenRule(err error) string {
	var fe *ForbiddenError
	if errors.As(err, &fe) && fe.Rule != "" {
		return fe.Rule
	}
	return "Forbidden."
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsInvalidSession(err error) bool {
	return errors.Is(err, ErrInvalidSession)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
