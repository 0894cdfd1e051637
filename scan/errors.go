package scan

import (
	"errors"
	"strings"
)

// ErrorCode classifies session errors for programmatic handling.
type ErrorCode int

const (
	// ErrCodeUnavailable means no NFC radio is present or it is disabled.
	ErrCodeUnavailable ErrorCode = iota + 100
	// ErrCodeAlreadyScanning means start was requested while a session
	// was active; the request is rejected without a state change.
	ErrCodeAlreadyScanning
	// ErrCodeSessionFailed means the underlying platform session failed
	// to start or operate; the controller is forced back to Idle.
	ErrCodeSessionFailed
)

// Error provides structured session error information.
type Error struct {
	Code    ErrorCode
	Op      string // Operation that failed (e.g. "Start")
	Message string // Human-readable message
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewUnavailableError creates an error for a missing or disabled radio.
func NewUnavailableError(op string) *Error {
	return &Error{
		Code:    ErrCodeUnavailable,
		Op:      op,
		Message: "NFC is not available on this device",
	}
}

// NewAlreadyScanningError creates an error for a reentrant start request.
func NewAlreadyScanningError(op string) *Error {
	return &Error{
		Code:    ErrCodeAlreadyScanning,
		Op:      op,
		Message: "a scan session is already active",
	}
}

// NewSessionError creates an error for platform session failures.
func NewSessionError(op string, cause error) *Error {
	return &Error{
		Code:    ErrCodeSessionFailed,
		Op:      op,
		Message: "platform session failed",
		Cause:   cause,
	}
}

// IsUnavailable checks whether err reports a missing radio.
func IsUnavailable(err error) bool {
	return hasCode(err, ErrCodeUnavailable)
}

// IsAlreadyScanning checks whether err reports a rejected reentrant start.
func IsAlreadyScanning(err error) bool {
	return hasCode(err, ErrCodeAlreadyScanning)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
