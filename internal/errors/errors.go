package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the symbol graph builder
type ErrorType string

const (
	// Input errors
	ErrorTypeBuildDescription ErrorType = "build_description"
	ErrorTypeParse            ErrorType = "parse"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Output errors
	ErrorTypeOutput ErrorType = "output"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeKindMismatch ErrorType = "kind_mismatch"
)

// BuildDescriptionError reports a compile database that cannot be used.
// A run that hits one aborts before any file is parsed.
type BuildDescriptionError struct {
	Type       ErrorType
	Path       string
	Entry      int
	Underlying error
	Timestamp  time.Time
}

// NewBuildDescriptionError creates a new build description error
func NewBuildDescriptionError(path string, err error) *BuildDescriptionError {
	return &BuildDescriptionError{
		Type:       ErrorTypeBuildDescription,
		Path:       path,
		Entry:      -1,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithEntry records which entry of the database was rejected
func (e *BuildDescriptionError) WithEntry(index int) *BuildDescriptionError {
	e.Entry = index
	return e
}

// Error implements the error interface
func (e *BuildDescriptionError) Error() string {
	if e.Entry >= 0 {
		return fmt.Sprintf("build description %s: entry %d: %v", e.Path, e.Entry, e.Underlying)
	}
	return fmt.Sprintf("build description %s: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *BuildDescriptionError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a file the front-end could not turn into a translation unit
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Args       []string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithArgs attaches the compiler arguments the parse was attempted with
func (e *ParseError) WithArgs(args []string) *ParseError {
	e.Args = args
	return e
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if errors.Is(err, fs.ErrPermission) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// OutputError represents a failure to write the serialized graph
type OutputError struct {
	Type       ErrorType
	Path       string
	Format     string
	Underlying error
	Timestamp  time.Time
}

// NewOutputError creates a new output error
func NewOutputError(path, format string, err error) *OutputError {
	return &OutputError{
		Type:       ErrorTypeOutput,
		Path:       path,
		Format:     format,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *OutputError) Error() string {
	return fmt.Sprintf("writing %s output to %s: %v", e.Format, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *OutputError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// KindMismatchError means one unique id was registered for two different
// symbol kinds. The id space is corrupt when this happens, so it is raised
// with panic and only recovered at the process boundary.
type KindMismatchError struct {
	Type      ErrorType
	USR       string
	Want      string
	Got       string
	Timestamp time.Time
}

// NewKindMismatchError creates a new kind mismatch error
func NewKindMismatchError(usr, want, got string) *KindMismatchError {
	return &KindMismatchError{
		Type:      ErrorTypeKindMismatch,
		USR:       usr,
		Want:      want,
		Got:       got,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("symbol %q is a %s, requested as %s", e.USR, e.Got, e.Want)
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
