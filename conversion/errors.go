package conversion

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeNotSupported indicates the converter has no rule for the target kind
	ErrTypeNotSupported = errors.New("conversion: type not supported")

	// ErrConversionFailed indicates the cell could not be parsed as the target kind
	ErrConversionFailed = errors.New("conversion: conversion failed")
)

// ConversionError describes a failed cell conversion.
// errors.Is matches it against ErrTypeNotSupported or ErrConversionFailed,
// and errors.As/Is reach the parser error kept in Err.
type ConversionError struct {
	// Value is the raw cell
	Value string
	// Target is the requested type
	Target TargetType
	// Err is the underlying parser error, if any
	Err error

	code error
}

// Error returns the human readable message. The target is named without
// its nullability flag.
func (e *ConversionError) Error() string {
	if e.code == ErrTypeNotSupported {
		return fmt.Sprintf(`"%s" is not a supported type.`, e.Target.NonNull())
	}
	return fmt.Sprintf(`Could not parse "%s" as "%s".`, e.Value, e.Target.NonNull())
}

// Unwrap returns the error code and the parser error.
func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.code}
	}
	return []error{e.code, e.Err}
}

// Code returns ErrTypeNotSupported or ErrConversionFailed.
func (e *ConversionError) Code() error {
	return e.code
}

// NewConversionFailed returns a ConversionFailed error for value and target wrapping cause.
// Custom converters use it to report parse failures the same way the built-in ones do.
func NewConversionFailed(value string, target TargetType, cause error) *ConversionError {
	return &ConversionError{Value: value, Target: target, Err: cause, code: ErrConversionFailed}
}

// NewTypeNotSupported returns a TypeNotSupported error for target.
func NewTypeNotSupported(target TargetType) *ConversionError {
	return &ConversionError{Target: target, code: ErrTypeNotSupported}
}
