// File: flowerr/errors.go
// Package flowerr defines the scheduler's error taxonomy (spec.md §7):
// kinds, not type names — ConfigurationError, PortAccessError,
// BufferCapacityError, DTypeMismatch, ModuleLoadError, ProxyError,
// ShutdownPending.
//
// Grounded on the teacher's api/errors.go (ErrorCode + *Error with
// WithContext), extended with this core's own taxonomy.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package flowerr

import "fmt"

// Code enumerates the error kinds from spec.md §7.
type Code int

const (
	CodeOK Code = iota
	CodeConfiguration
	CodePortAccess
	CodeBufferCapacity
	CodeDTypeMismatch
	CodeModuleLoad
	CodeProxy
	CodeShutdownPending
)

func (c Code) String() string {
	switch c {
	case CodeConfiguration:
		return "configuration_error"
	case CodePortAccess:
		return "port_access_error"
	case CodeBufferCapacity:
		return "buffer_capacity_error"
	case CodeDTypeMismatch:
		return "dtype_mismatch"
	case CodeModuleLoad:
		return "module_load_error"
	case CodeProxy:
		return "proxy_error"
	case CodeShutdownPending:
		return "shutdown_pending"
	default:
		return "ok"
	}
}

// Error is a structured error carrying a Code and free-form context,
// mirroring the teacher's api.Error shape.
type Error struct {
	Code    Code
	Message string
	Context map[string]any
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (context: %+v)", e.Code, e.Message, e.Context)
}

// New creates a structured Error of the given kind.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithContext attaches a key/value pair and returns the same error for
// chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Convenience constructors for each taxonomy kind, per spec.md §7.

func PortAccess(msg string) *Error      { return New(CodePortAccess, msg) }
func BufferCapacity(msg string) *Error  { return New(CodeBufferCapacity, msg) }
func Configuration(msg string) *Error   { return New(CodeConfiguration, msg) }
func DTypeMismatch(msg string) *Error   { return New(CodeDTypeMismatch, msg) }
func ModuleLoad(msg string) *Error      { return New(CodeModuleLoad, msg) }
func Proxy(msg string) *Error           { return New(CodeProxy, msg) }
func ShutdownPending(msg string) *Error { return New(CodeShutdownPending, msg) }
