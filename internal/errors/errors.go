// Package errors provides standardized error handling for leafscan.
// It defines common error types, kinds, and helper functions for consistent
// error creation, wrapping, and classification across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	FileReadFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Validation error kinds
	InvalidMediaType
	FileTooLarge
	NoFileLoaded
	// Transport error kinds
	RequestFailed
	BadStatus
	MalformedResponse
	StaleResponse
)

// Common error constants for frequently occurring errors
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrNoFileLoaded  = NewValidationError("no image loaded", NoFileLoaded)
	ErrStaleResponse = NewTransportError("response for a request that is no longer current", StaleResponse, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

func base(msg string, kind ErrorKind, err error) ApplicationError {
	return ApplicationError{msg: msg, err: err, kind: kind}
}

// format joins the message, an optional subject and the cause as
// "msg: subject: cause"
func format(msg, subject string, cause error) string {
	out := msg
	if subject != "" {
		out += ": " + subject
	}
	if cause != nil {
		out += ": " + cause.Error()
	}
	return out
}

func (e *ApplicationError) Error() string {
	return format(e.msg, "", e.err)
}

func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError is a failure to stat, open or read a file on disk
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a file error for path
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{ApplicationError: base(msg, kind, err), path: path}
}

func (e *FileError) Error() string {
	return format(e.msg, e.path, e.err)
}

// Path returns the file the error is about
func (e *FileError) Path() string {
	return e.path
}

// ConfigError is a configuration value that cannot be loaded or used.
// Param names the offending key, flag or file.
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{ApplicationError: base(msg, kind, err), param: param}
}

func (e *ConfigError) Error() string {
	return format(e.msg, e.param, e.err)
}

// Param returns the configuration key, flag or file associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// ValidationError is a client-side rejection of a file before upload.
type ValidationError struct {
	ApplicationError
	mediaType string
	size      int64
}

// NewValidationError creates a validation error of kind
func NewValidationError(msg string, kind ErrorKind) *ValidationError {
	return &ValidationError{ApplicationError: base(msg, kind, nil)}
}

// WithFile records the rejected file's media type and size
func (e *ValidationError) WithFile(mediaType string, size int64) *ValidationError {
	e.mediaType = mediaType
	e.size = size
	return e
}

// MediaType returns the media type of the rejected file
func (e *ValidationError) MediaType() string {
	return e.mediaType
}

// Size returns the byte size of the rejected file
func (e *ValidationError) Size() int64 {
	return e.size
}

// TransportError covers every failure of the request/response cycle,
// including responses that arrive but cannot be parsed.
type TransportError struct {
	ApplicationError
	status int
	remote string
}

// NewTransportError creates a transport error of kind
func NewTransportError(msg string, kind ErrorKind, err error) *TransportError {
	return &TransportError{ApplicationError: base(msg, kind, err)}
}

// WithStatus records the HTTP status code and the server's error message, if any
func (e *TransportError) WithStatus(status int, remote string) *TransportError {
	e.status = status
	e.remote = remote
	return e
}

// Error includes the HTTP status and the server's message when a response
// was received, e.g. "service returned an error: status=500: model not loaded".
func (e *TransportError) Error() string {
	if e.status == 0 {
		return e.ApplicationError.Error()
	}
	subject := fmt.Sprintf("status=%d", e.status)
	if e.remote != "" {
		subject += ": " + e.remote
	}
	return format(e.msg, subject, e.err)
}

// Status returns the HTTP status code, 0 when no response was received
func (e *TransportError) Status() int {
	return e.status
}

// RemoteMessage returns the error message reported by the server
func (e *TransportError) RemoteMessage() string {
	return e.remote
}

// New creates an error of unknown kind
func New(msg string) error {
	return &ApplicationError{msg: msg}
}

// Newf creates an error of unknown kind from a format
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap adds context to err, keeping it reachable through Unwrap, Is and As.
// A nil err stays nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// KindOf returns the first known kind in err's chain
func KindOf(err error) ErrorKind {
	type kinded interface{ Kind() ErrorKind }
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsValidation checks if the error is a client-side validation error
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsTransport checks if the error is a transport or malformed response error
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// IsStaleResponse checks if the error marks a response that arrived too late
func IsStaleResponse(err error) bool {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.Kind() == StaleResponse
	}
	return false
}
