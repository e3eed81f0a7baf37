package calculator

import "errors"

// Sentinel errors for every failure the core can report. Callers wrap them
// with context and match with errors.Is.
var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrMissingOperand   = errors.New("missing operand")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrMalformedInput   = errors.New("malformed input")
)

// Kind classifies a core error for the transport layer.
type Kind string

const (
	KindNone             Kind = ""
	KindInvalidOperation Kind = "invalid_operation"
	KindMissingOperand   Kind = "missing_operand"
	KindDivisionByZero   Kind = "division_by_zero"
	KindMalformedInput   Kind = "malformed_input"
	KindInternal         Kind = "internal"
)

// KindOf returns the Kind of err. Errors that do not wrap one of the core
// sentinels are KindInternal; a nil error is KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	case errors.Is(err, ErrMissingOperand):
		return KindMissingOperand
	case errors.Is(err, ErrDivisionByZero):
		return KindDivisionByZero
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	default:
		return KindInternal
	}
}
