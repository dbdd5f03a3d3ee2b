// Package errors implements module-coded errors that survive a trip over
// the wire and can be reconstructed by the receiving side.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// UnknownModule is the module name reported for errors that were not
	// registered through New.
	UnknownModule = "unknown"

	// CodeNoError is the reserved "no error" code.
	CodeNoError = 0
)

var errUnknownError = New(UnknownModule, 1, "unknown error")

// Re-exports so this package can be used as a replacement for errors.
var (
	As     = errors.As
	Is     = errors.Is
	Unwrap = errors.Unwrap
)

var registry sync.Map

type codedError struct {
	module string
	code   uint32
	msg    string
}

func (e *codedError) Error() string {
	return e.msg
}

type contextError struct {
	err     error
	context string
}

func (e *contextError) Error() string {
	return fmt.Sprintf("%v: %s", e.err, e.context)
}

func (e *contextError) Unwrap() error {
	return e.err
}

// New creates and registers a new coded error.
//
// The (module, code) pair must be unique and the code must not be
// CodeNoError, otherwise this function panics.
func New(module string, code uint32, msg string) error {
	if code == CodeNoError {
		panic(fmt.Errorf("errors: code %d is reserved", CodeNoError))
	}

	e := &codedError{
		module: module,
		code:   code,
		msg:    msg,
	}

	key := registryKey(module, code)
	if prev, loaded := registry.LoadOrStore(key, e); loaded {
		panic(fmt.Errorf("errors: already registered: %s (existing: %s)", key, prev))
	}
	return e
}

// WithContext wraps err with additional free-form context. The wrapped
// error still matches the original under Is.
func WithContext(err error, context string) error {
	if context == "" {
		return err
	}
	return &contextError{
		err:     err,
		context: context,
	}
}

// Context returns the context attached via WithContext, if any.
func Context(err error) string {
	var ce *contextError
	if err != nil && As(err, &ce) {
		return ce.context
	}
	return ""
}

// FromCode reconstructs a registered error from its module and code.
//
// If the pair is not registered, a fresh unregistered error carrying the
// given message is returned. If the message carries context on top of the
// registered message, the context is preserved.
func FromCode(module string, code uint32, message string) error {
	v, ok := registry.Load(registryKey(module, code))
	if !ok || v == errUnknownError {
		return &codedError{
			module: module,
			code:   code,
			msg:    message,
		}
	}
	err := v.(*codedError)
	if message == err.msg {
		return err
	}

	return WithContext(err, strings.TrimPrefix(message, err.msg+": "))
}

// Code returns the module and code of err.
//
// A nil error yields an empty module and CodeNoError, an uncoded error
// yields the unknown module.
func Code(err error) (string, uint32) {
	if err == nil {
		return "", CodeNoError
	}

	var ce *codedError
	if !As(err, &ce) {
		ce = errUnknownError.(*codedError)
	}
	return ce.module, ce.code
}

// Describe returns a short "module/code" label for err, suitable for use
// as a metric label.
func Describe(err error) string {
	if err == nil {
		return "ok"
	}
	module, code := Code(err)
	return fmt.Sprintf("%s/%d", module, code)
}

func registryKey(module string, code uint32) string {
	return fmt.Sprintf("%s-%d", module, code)
}
