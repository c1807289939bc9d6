package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"civix-api/internal/app/http/httperr"
	"civix-api/internal/infra/csrf"
	"civix-api/internal/infra/sanitizer"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CodeCSRFTokenInvalid is the machine-readable code of a CSRF rejection.
const CodeCSRFTokenInvalid = "CSRF_TOKEN_INVALID"

// CSRFErrors renders CSRF rejections raised further down the chain and
// leaves every other error to Errors.
func CSRFErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		if errors.Is(last.Err, csrf.ErrTokenInvalid) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Invalid CSRF token",
				"message": "Your session has expired or the request is invalid. Please refresh the page and try again.",
				"code":    CodeCSRFTokenInvalid,
			})
		}
	}
}

type ErrorsConfig struct {
	// Production hides error details from 500 responses.
	Production bool
	Logger     *logrus.Logger
}

// Errors renders the last error recorded on the context when nothing has
// been written yet.
func Errors(cfg ErrorsConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		status, body := translate(last, cfg.Production)
		if cfg.Logger != nil {
			entry := cfg.Logger.WithFields(logrus.Fields{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     status,
				"request_id": c.GetString(requestIDKey),
			}).WithError(last.Err)
			if status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Debug("request rejected")
			}
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// RecoverErrors turns a panic in a later handler into an error for Errors
// to render.
func RecoverErrors() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		_ = c.Error(fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

func translate(ge *gin.Error, production bool) (int, gin.H) {
	err := ge.Err

	var maxBytes *http.MaxBytesError
	var he *httperr.Error
	var syntax *json.SyntaxError
	var unmarshal *json.UnmarshalTypeError
	var structural *sanitizer.StructuralError

	switch {
	case errors.Is(err, ErrSanitization) && errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, gin.H{
			"error":   "Payload Too Large",
			"message": fmt.Sprintf("Request body exceeds %d bytes", maxBytes.Limit),
		}
	case errors.Is(err, ErrSanitization), errors.As(err, &structural):
		return http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": "Request contains potentially malicious content",
		}
	case errors.Is(err, csrf.ErrTokenInvalid):
		return http.StatusForbidden, gin.H{
			"error":   "Invalid CSRF token",
			"message": "Your session has expired or the request is invalid. Please refresh the page and try again.",
			"code":    CodeCSRFTokenInvalid,
		}
	case errors.As(err, &he):
		body := gin.H{"error": http.StatusText(he.Status), "message": he.Message}
		if he.Code != "" {
			body["code"] = he.Code
		}
		return he.Status, body
	case ge.IsType(gin.ErrorTypeBind), errors.As(err, &syntax), errors.As(err, &unmarshal):
		return http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Request body is invalid",
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Resource not found",
		}
	}

	message := "An unexpected error occurred"
	if !production {
		message = err.Error()
	}
	return http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": message,
	}
}
