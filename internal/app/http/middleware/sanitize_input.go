package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"civix-api/internal/infra/metrics"
	"civix-api/internal/infra/sanitizer"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DefaultMaxBodyBytes caps JSON bodies read by SanitizeInput.
const DefaultMaxBodyBytes int64 = 1 << 20

const (
	sanitizedBodyKey = "sanitize.body"
	rawBodyKey       = "sanitize.raw"
)

// sanitizedHeaders end up in logs and handlers, so they are filtered too.
var sanitizedHeaders = []string{"User-Agent", "Referer", "X-Forwarded-For"}

// ErrSanitization matches every failure raised by SanitizeInput.
var ErrSanitization = errors.New("request contains potentially malicious content")

// SanitizationError records which part of the request could not be
// sanitized.
type SanitizationError struct {
	Source string
	Err    error
}

func (e *SanitizationError) Error() string {
	return fmt.Sprintf("sanitize %s: %v", e.Source, e.Err)
}

func (e *SanitizationError) Unwrap() error { return e.Err }

func (e *SanitizationError) Is(target error) bool { return target == ErrSanitization }

type SanitizeConfig struct {
	Sanitizer    *sanitizer.Sanitizer
	MaxBodyBytes int64
	Logger       *logrus.Logger
	Metrics      *metrics.Metrics
}

// SanitizeInput filters the request body, query string, path params and a
// fixed set of headers through the sanitizer before any handler sees them.
// Anything that cannot be sanitized aborts the request.
func SanitizeInput(cfg SanitizeConfig) gin.HandlerFunc {
	if cfg.Sanitizer == nil {
		cfg.Sanitizer = sanitizer.New()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return func(c *gin.Context) {
		if err := sanitizeRequest(c, cfg); err != nil {
			if cfg.Metrics != nil {
				cfg.Metrics.SanitizationFailures.Inc()
			}
			if cfg.Logger != nil {
				cfg.Logger.WithFields(logrus.Fields{
					"path":       c.Request.URL.Path,
					"request_id": c.GetString(requestIDKey),
				}).WithError(err).Warn("input sanitization failed")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		if cfg.Metrics != nil {
			cfg.Metrics.SanitizedRequests.Inc()
		}
		c.Next()
	}
}

// SanitizedBody returns the sanitized JSON object body, if there was one.
func SanitizedBody(c *gin.Context) (sanitizer.Object, bool) {
	v, ok := c.Get(sanitizedBodyKey)
	if !ok {
		return nil, false
	}
	obj, ok := v.(sanitizer.Object)
	return obj, ok
}

// RawBody returns the JSON body bytes as received. Use it only to check
// signatures; read data from the request body, which is sanitized.
func RawBody(c *gin.Context) ([]byte, bool) {
	v, ok := c.Get(rawBodyKey)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func sanitizeRequest(c *gin.Context, cfg SanitizeConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SanitizationError{Source: "request", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	s := cfg.Sanitizer
	if err := sanitizeBody(c, s, cfg.MaxBodyBytes); err != nil {
		return &SanitizationError{Source: "body", Err: err}
	}
	sanitizeQuery(c, s)
	sanitizeParams(c, s)
	sanitizeHeaders(c, s)
	return nil
}

// sanitizeBody treats every body as JSON unless it is declared as a form.
// Handlers bind JSON without looking at Content-Type, so a body that is not
// a form and does not decode is rejected.
func sanitizeBody(c *gin.Context, s *sanitizer.Sanitizer, limit int64) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	switch c.ContentType() {
	case gin.MIMEPOSTForm:
		return sanitizeFormBody(c, s, limit)
	case gin.MIMEMultipartPOSTForm:
		return sanitizeMultipartBody(c, s, limit)
	}
	return sanitizeJSONBody(c, s, limit)
}

func sanitizeJSONBody(c *gin.Context, s *sanitizer.Sanitizer, limit int64) error {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		return err
	}
	c.Set(rawBodyKey, raw)

	if len(bytes.TrimSpace(raw)) == 0 {
		resetBody(c, raw)
		return nil
	}

	v, err := sanitizer.Decode(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	if _, ok := v.(sanitizer.Object); !ok {
		// only objects are rewritten
		resetBody(c, raw)
		return nil
	}

	clean, err := s.Sanitize(v)
	if err != nil {
		return err
	}
	out, err := json.Marshal(clean)
	if err != nil {
		return err
	}

	c.Set(sanitizedBodyKey, clean)
	resetBody(c, out)
	return nil
}

func sanitizeFormBody(c *gin.Context, s *sanitizer.Sanitizer, limit int64) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseForm(); err != nil {
		return err
	}
	clean := sanitizeValues(s, c.Request.PostForm)
	c.Request.PostForm = clean
	// rebuilt from PostForm and the sanitized query on next access
	c.Request.Form = nil
	resetBody(c, []byte(clean.Encode()))
	return nil
}

func sanitizeMultipartBody(c *gin.Context, s *sanitizer.Sanitizer, limit int64) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(limit); err != nil {
		return err
	}
	form := c.Request.MultipartForm
	form.Value = sanitizeValues(s, form.Value)
	for name, files := range form.File {
		for _, fh := range files {
			fh.Filename = s.SanitizeString(fh.Filename)
		}
		if clean := s.SanitizeString(name); clean != name {
			delete(form.File, name)
			form.File[clean] = append(form.File[clean], files...)
		}
	}
	c.Request.PostForm = url.Values(form.Value)
	c.Request.Form = nil
	return nil
}

func sanitizeQuery(c *gin.Context, s *sanitizer.Sanitizer) {
	q := c.Request.URL.Query()
	if len(q) == 0 {
		return
	}
	c.Request.URL.RawQuery = sanitizeValues(s, q).Encode()
}

func sanitizeParams(c *gin.Context, s *sanitizer.Sanitizer) {
	for i := range c.Params {
		c.Params[i].Value = s.SanitizeString(c.Params[i].Value)
	}
}

func sanitizeHeaders(c *gin.Context, s *sanitizer.Sanitizer) {
	for _, name := range sanitizedHeaders {
		values := c.Request.Header.Values(name)
		if len(values) == 0 {
			continue
		}
		clean := make([]string, len(values))
		for i, v := range values {
			clean[i] = s.SanitizeString(v)
		}
		c.Request.Header[name] = clean
	}
}

func sanitizeValues(s *sanitizer.Sanitizer, in url.Values) url.Values {
	out := make(url.Values, len(in))
	for k, vs := range in {
		key := s.SanitizeString(k)
		for _, v := range vs {
			out[key] = append(out[key], s.SanitizeString(v))
		}
	}
	return out
}

func resetBody(c *gin.Context, body []byte) {
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	c.Request.ContentLength = int64(len(body))
}
