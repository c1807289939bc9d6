// Package httperr carries route failures from handlers to the error
// translator at the tail of the middleware chain. Handlers never write
// error bodies themselves.
package httperr

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is a failure with the HTTP status it should surface as.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithCode attaches a machine-readable code.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }

// Internal hides err behind a generic 500.
func Internal(err error) *Error {
	return Wrap(http.StatusInternalServerError, "Something went wrong", err)
}

// Handle adapts an error-returning handler to gin. A returned error is
// recorded on the context and the chain is aborted; the error translator
// renders it.
func Handle(fn func(c *gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}
