package xoerr

import (
	"errors"
	"fmt"
)

// AuthError indicates a failed handshake or an unrecoverable token refresh.
// The user must re-authorize; the process keeps running.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth: %s", e.Op)
	}
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError indicates that no calendar event matched an update or
// delete request. Reported to the user, never fatal.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no event matching %q", e.Query)
}

// ValidationError indicates invalid conversational input, such as an
// unrecognized label or an out-of-range selection index. The pending
// slot that triggered it must be preserved so the user can retry.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// TransientError indicates a network or backend failure. The current
// cycle or message is reported once and processing continues.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ConfigError indicates missing or unusable configuration. Fatal at
// startup, never raised per request.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// Auth wraps err as an AuthError.
func Auth(op string, err error) error { return &AuthError{Op: op, Err: err} }

// NotFound reports that no event matched query.
func NotFound(query string) error { return &NotFoundError{Query: query} }

// Validation reports invalid user input with a user-facing message.
func Validation(msg string) error { return &ValidationError{Msg: msg} }

// Transient wraps err as a TransientError.
func Transient(op string, err error) error { return &TransientError{Op: op, Err: err} }

// Config reports an unusable configuration field.
func Config(field, msg string) error { return &ConfigError{Field: field, Msg: msg} }

// IsAuth reports whether err is or wraps an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransient reports whether err is or wraps a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
