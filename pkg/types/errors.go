package types

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which rule a value violated.
type ErrorKind string

const (
	ErrorKindInvalidDate                  ErrorKind = "InvalidDate"
	ErrorKindInvalidTime                  ErrorKind = "InvalidTime"
	ErrorKindUnmappedSchedule             ErrorKind = "UnmappedSchedule"
	ErrorKindInvalidConsumption           ErrorKind = "InvalidConsumption"
	ErrorKindIncompletePriceConfiguration ErrorKind = "IncompletePriceConfiguration"
	ErrorKindInvalidPrice                 ErrorKind = "InvalidPrice"
	ErrorKindUnknownSupplier              ErrorKind = "UnknownSupplier"
)

// Error is returned by every tariff operation that rejects its input. Field is
// set when the error concerns a single named input (a price component, a
// request field) and Value holds the offending value.
type Error struct {
	Kind  ErrorKind
	Field string
	Value any
}

var (
	ErrInvalidDate                  = &Error{Kind: ErrorKindInvalidDate}
	ErrInvalidTime                  = &Error{Kind: ErrorKindInvalidTime}
	ErrUnmappedSchedule             = &Error{Kind: ErrorKindUnmappedSchedule}
	ErrInvalidConsumption           = &Error{Kind: ErrorKindInvalidConsumption}
	ErrIncompletePriceConfiguration = &Error{Kind: ErrorKindIncompletePriceConfiguration}
	ErrInvalidPrice                 = &Error{Kind: ErrorKindInvalidPrice}
	ErrUnknownSupplier              = &Error{Kind: ErrorKindUnknownSupplier}
)

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Value != nil:
		return fmt.Sprintf("%s: %s=%v", e.Kind, e.Field, e.Value)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Value != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Value)
	}
	return string(e.Kind)
}

// Is reports whether target is an *Error of the same kind, so callers can use
// errors.Is(err, types.ErrInvalidPrice) regardless of the offending value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, field string, value any) *Error {
	return &Error{Kind: kind, Field: field, Value: value}
}

// IsTariffError returns true if err wraps an *Error, meaning the input was
// rejected rather than an infrastructure failure.
func IsTariffError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
