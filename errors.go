// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

// ErrorCode is the stable identifier the public operations leave in
// the last-error channel (Init also returns it directly as an error).
type ErrorCode int

const (
	Success ErrorCode = iota
	InitFailed
	AllocFailed
	FreeFailed
	OutOfMemory
	InvalidPointer
	DoubleFree
	InvalidSize
	NotInitialized
	Overflow
	Underflow
	AlignmentError
	BoundaryError
	CorruptionDetected
	SprayAttack
	UnknownError
)

// Error implements the error interface; a Success code formats the same
// as any other since ErrorCode is a plain value type, but callers should
// compare against Success (or check for a nil error from the functions
// that return one) rather than stringifying it to detect success.
func (c ErrorCode) Error() string {
	return errorWhat(c)
}

// errorWhat is the pure, side-effect-free code-to-string table.
func errorWhat(code ErrorCode) string {
	switch code {
	case Success:
		return "success"
	case InitFailed:
		return "heap initialization failed"
	case AllocFailed:
		return "memory allocation failed"
	case FreeFailed:
		return "memory free failed"
	case OutOfMemory:
		return "out of memory"
	case InvalidPointer:
		return "invalid pointer"
	case DoubleFree:
		return "double free detected"
	case InvalidSize:
		return "invalid size requested"
	case NotInitialized:
		return "heap not initialized"
	case Overflow:
		return "heap overflow detected"
	case Underflow:
		return "heap underflow detected"
	case AlignmentError:
		return "memory alignment error"
	case BoundaryError:
		return "memory boundary violation"
	case CorruptionDetected:
		return "heap corruption detected"
	case SprayAttack:
		return "heap spray detected"
	default:
		return "unknown error"
	}
}

// ErrorWhat returns the human-readable string for an error code. It is
// pure and read-only, matching heap_error_what's contract in spec.md §6.
func ErrorWhat(code ErrorCode) string {
	return errorWhat(code)
}

// lastErrorState is the process-wide "last writer wins" error channel
// from spec.md §4.1: a tagged outcome plus a mirror of the platform
// errno number observed at the point of failure (0 when not applicable).
type lastErrorState struct {
	code  ErrorCode
	errno int
}

var lastErr lastErrorState

// setLastError is the single write point of the channel. Init, Alloc,
// Free, AddRoot, RemoveRoot, GCInit and Collect call it once before
// returning, except AddRoot with a nil pp; the read-only queries and
// dumps never call it.
func setLastError(code ErrorCode, errno int) ErrorCode {
	lastErr.code = code
	lastErr.errno = errno
	return code
}

// LastError returns the most recently recorded outcome. Inspection is
// read-only and idempotent.
func LastError() ErrorCode {
	return lastErr.code
}

// LastErrno returns the platform errno mirror recorded alongside the
// last error code (0 if the last operation did not touch the OS or
// succeeded).
func LastErrno() int {
	return lastErr.errno
}

// asError returns nil for Success, so callers can use ordinary
// `if err := uheap.Init(n); err != nil` control flow alongside
// LastError()/LastErrno() for parity with the C-shaped API.
func (c ErrorCode) asError() error {
	if c == Success {
		return nil
	}
	return c
}
