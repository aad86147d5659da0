// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package errs defines the error kinds shared across the engine, following
// the teacher's preference for small semantic sentinels (see
// code.hybscloud.com/iox.ErrWouldBlock) over deep wrapped error chains.
package errs

import "fmt"

// Kind identifies one of the engine's error categories (spec.md §7).
type Kind int

const (
	// CapacityExceeded: an arena allocation requested more than a page's
	// capacity. Fatal for the pool's user.
	CapacityExceeded Kind = iota
	// IoRead: the underlying source failed on read.
	IoRead
	// IoWrite: the underlying sink failed on write.
	IoWrite
	// DecodeError: a Decoder reported Error.
	DecodeError
	// EncodeError: an Encoder reported Error.
	EncodeError
	// MalformedRecord: the parser's grammar was violated.
	MalformedRecord
	// ProtocolViolation: a missing mandatory subfield or truncated header
	// in the on-wire block format.
	ProtocolViolation
	// AssertionFailed: a query predicate chose to abort the process.
	AssertionFailed
	// Shutdown: a cooperative stop was requested.
	Shutdown
)

func (k Kind) String() string {
	switch k {
	case CapacityExceeded:
		return "capacity_exceeded"
	case IoRead:
		return "io_read"
	case IoWrite:
		return "io_write"
	case DecodeError:
		return "decode_error"
	case EncodeError:
		return "encode_error"
	case MalformedRecord:
		return "malformed_record"
	case ProtocolViolation:
		return "protocol_violation"
	case AssertionFailed:
		return "assertion_failed"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bascet: %s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("bascet: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
