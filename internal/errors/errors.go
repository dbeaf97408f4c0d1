// Package errors defines the stable error codes printed by microflame.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// add-env
	EInvalidKey   Code = "E_INVALID_KEY"
	EInvalidValue Code = "E_INVALID_VALUE"
	EFileNotFound Code = "E_FILE_NOT_FOUND"
	EParse        Code = "E_PARSE"
	EWriteFailed  Code = "E_WRITE_FAILED"

	// check
	EValidationFailed Code = "E_VALIDATION_FAILED"

	// init / generate
	EFileExists    Code = "E_FILE_EXISTS"
	EInstallFailed Code = "E_INSTALL_FAILED"
)

// Error is the standard error type for microflame commands.
type Error struct {
	Code  Code
	Msg   string
	Cause error
	Path  string // file the error refers to, if any
}

// Error returns "CODE: message".
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// Wrap creates an Error wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &Error{Code: code, Msg: msg, Cause: err}
}

// WrapPath creates an Error about a specific file.
func WrapPath(code Code, path string, err error) error {
	msg := path
	if err != nil {
		msg = fmt.Sprintf("%s: %v", path, err)
	}
	return &Error{Code: code, Msg: msg, Cause: err, Path: path}
}

// GetCode extracts the error code from err, or "" if err carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExitCode maps an error to a process exit code.
//
//	0  success
//	2  usage error
//	3  not a valid project (missing or malformed env/schema files)
//	1  anything else
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case EUsage:
		return 2
	case EFileNotFound, EParse:
		return 3
	default:
		return 1
	}
}

// Print writes err to w in the stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var e *Error
	if errors.As(err, &e) {
		fmt.Fprintf(w, "error_code: %s\n", e.Code)
		fmt.Fprintln(w, e.Msg)
		return
	}
	fmt.Fprintln(w, err.Error())
}
