package warpcol

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for structurally invalid requests, such
	// as unpacking a nonzero bit range from an absent mask.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDeviceFailure wraps any unclassified failure reported by the
	// execution engine (kernel launch, synchronization, readback).
	ErrDeviceFailure = errors.New("device failure")
)

// ErrTypeMismatch indicates that input columns do not share one element type.
type ErrTypeMismatch struct {
	Column   int
	Expected DType
	Actual   DType
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: column %d is %s, expected %s", e.Column, e.Actual, e.Expected)
}

// ErrUnsupportedType indicates a variable-width element type was presented to
// a fixed-width operation.
type ErrUnsupportedType struct {
	DType DType
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s is not fixed-width", e.DType)
}
