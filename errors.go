package actor

import (
	"errors"
	"fmt"

	"github.com/ehrlich-b/goactor/internal/process"
)

// ErrorCode categorizes an Error the way the teacher's UblkErrorCode
// categorizes device errors: a stable string a caller can switch on
// without parsing Msg.
type ErrorCode string

const (
	CodeAddressNotFound     ErrorCode = "address not found"
	CodeTypeMismatch        ErrorCode = "envelope type mismatch"
	CodePollerFailure       ErrorCode = "poller failure"
	CodeRegistrationFailure ErrorCode = "registration failure"
	CodeTerminate           ErrorCode = "terminate"
)

// Error is a structured runtime error with enough context to act on
// programmatically via errors.As, mirroring the teacher's *Error type.
type Error struct {
	Op    string // Operation that failed (e.g. "Spawn", "Send", "Run")
	Addr  string // Process address involved, if any
	Code  ErrorCode
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Addr != "" {
		return fmt.Sprintf("actor: %s: %s (addr=%s)", e.Op, msg, e.Addr)
	}
	return fmt.Sprintf("actor: %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewError builds a structured Error without an address or wrapped cause.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// NewAddressError builds a CodeAddressNotFound error for addr.
func NewAddressError(op string, addr process.ID) *Error {
	return &Error{Op: op, Addr: addr.String(), Code: CodeAddressNotFound, Msg: "no live process at this address"}
}

// WrapError wraps inner with op, preserving its code if inner is already
// a structured Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	var ae *Error
	if errors.As(inner, &ae) {
		return &Error{Op: op, Addr: ae.Addr, Code: ae.Code, Msg: ae.Msg, Inner: ae.Inner}
	}
	return &Error{Op: op, Code: CodePollerFailure, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is (or wraps) an Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
