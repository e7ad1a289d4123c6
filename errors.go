// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package rawmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat signals a malformed container or sensor payload.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrNotImplemented is returned by decoders for formats they recognize
	// but cannot decode yet.
	ErrNotImplemented = errors.New("not implemented")

	// ErrCannotReadMake is returned when the Make tag is missing or unreadable.
	ErrCannotReadMake = errors.New("cannot read Make info from this raw file")

	// ErrCannotReadModel is returned when the Model tag is missing or unreadable.
	ErrCannotReadModel = errors.New("cannot read Model info from this raw file")

	// ErrFieldNotFound is wrapped in a FieldError when a field is absent.
	ErrFieldNotFound = errors.New("field not found")

	// ErrFieldType is wrapped in a FieldError when a field has an unexpected type.
	ErrFieldType = errors.New("unexpected field type")

	// I/O errors. The path is included in the wrapping error's message.
	ErrFileNotFound = errors.New("file does not exist")
	ErrFileMetadata = errors.New("file metadata cannot be read")
	ErrFileContent  = errors.New("file content cannot be read")
)

// ParseError is returned when a metadata tree cannot be parsed with a rule.
type ParseError struct {
	Rule string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("exif parse (rule %s): %v", e.Rule, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError is returned by the ParsedInfo getters.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedMakerError is returned when no decoder is registered for a maker.
type UnsupportedMakerError struct {
	Maker string
}

func (e *UnsupportedMakerError) Error() string {
	return fmt.Sprintf("this raw file from maker %q is not supported yet", e.Maker)
}

// UnsupportedModelError is returned when a maker's decoder does not know a model.
type UnsupportedModelError struct {
	Maker string
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("this raw file model %q (%s) is not supported yet", e.Model, e.Maker)
}

// DecodingError wraps failures from a maker specific decoder.
type DecodingError struct {
	Maker string
	Err   error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("%s: cannot read the raw file: %v", e.Maker, e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// IsInvalidFormat reports whether err signals malformed input,
// either a metadata tree that could not be parsed or a corrupt payload.
func IsInvalidFormat(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr) || errors.Is(err, ErrInvalidFormat)
}

// IsUnsupported reports whether err signals a maker or model without a decoder.
func IsUnsupported(err error) bool {
	var (
		merr *UnsupportedMakerError
		derr *UnsupportedModelError
	)
	return errors.As(err, &merr) || errors.As(err, &derr)
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}

func newDecodingError(maker string, err error) error {
	return &DecodingError{Maker: maker, Err: err}
}

func newNotImplementedErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, fmt.Sprintf(format, args...))
}
