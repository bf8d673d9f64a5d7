// Package result defines the uniform outcome of every authentication
// operation: a success value or a StructuredError that keeps its numeric
// status code across the RPC boundary.
package result

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a StructuredError.
type Kind string

const (
	KindConflict     Kind = "Conflict"
	KindUnauthorized Kind = "Unauthorized"
	KindNotFound     Kind = "NotFound"
	KindValidation   Kind = "Validation"
	KindInternal     Kind = "Internal"
)

// StructuredError is the error half of a Result. StatusCode is authoritative:
// receivers dispatch on it and never on Message or Title.
type StructuredError struct {
	Kind       Kind     `json:"kind"`
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
	Title      string   `json:"error"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Title, strings.Join(e.Message, "; "))
}

func newError(kind Kind, code int, title string, msg ...string) *StructuredError {
	return &StructuredError{Kind: kind, StatusCode: code, Message: msg, Title: title}
}

func Conflict(msg ...string) *StructuredError {
	return newError(KindConflict, http.StatusConflict, "Email Conflict", msg...)
}

func Unauthorized(msg ...string) *StructuredError {
	return newError(KindUnauthorized, http.StatusUnauthorized, "Unauthorized", msg...)
}

func NotFound(msg ...string) *StructuredError {
	return newError(KindNotFound, http.StatusNotFound, "Not Found", msg...)
}

func Validation(msg ...string) *StructuredError {
	return newError(KindValidation, http.StatusBadRequest, "Bad Request", msg...)
}

func Internal(msg ...string) *StructuredError {
	return newError(KindInternal, http.StatusInternalServerError, "Internal Server Error", msg...)
}

// Unit is the success value of operations that return nothing.
type Unit struct{}

// Result holds exactly one of a value or an error.
type Result[T any] struct {
	value T
	err   *StructuredError
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail builds a failed Result. A nil err is replaced by a generic Internal
// error so that a Result is never empty.
func Fail[T any](err *StructuredError) Result[T] {
	if err == nil {
		err = Internal("Internal server error")
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool {
	return r.err == nil
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() *StructuredError {
	return r.err
}

// Unwrap returns the value and the error the way a Go call would.
func (r Result[T]) Unwrap() (T, *StructuredError) {
	return r.value, r.err
}
