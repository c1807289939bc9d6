package middleware

import (
	"errors"
	"net/http"

	"civix-api/internal/infra/csrf"
	"civix-api/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	HeaderCSRFToken    = "X-CSRF-Token"
	HeaderAltCSRFToken = "CSRF-Token"
	// CSRFField is the body and query field carrying the token.
	CSRFField = "_csrf"

	csrfIssuerKey = "csrf.issuer"
)

// Rejection reasons, also used as metric labels.
const (
	ReasonMissingSecret = "missing_secret"
	ReasonMissingToken  = "missing_token"
	ReasonMismatch      = "mismatch"
)

// ErrCSRFNotInstalled is returned by CSRFToken on a route the guard does
// not cover.
var ErrCSRFNotInstalled = errors.New("csrf middleware not installed")

// CSRFError is raised for every rejected request. It matches
// csrf.ErrTokenInvalid.
type CSRFError struct {
	Reason string
}

func (e *CSRFError) Error() string { return "csrf: invalid token (" + e.Reason + ")" }

func (e *CSRFError) Unwrap() error { return csrf.ErrTokenInvalid }

type CSRFConfig struct {
	Store   *csrf.Store
	Exempt  csrf.Rules
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// CSRF rejects state-changing requests that do not carry a token derived
// from the session secret cookie. Exempt paths are checked first, then
// safe methods pass. Must run after SanitizeInput so body fields are
// available.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, err := cfg.Store.Secret(c.Request)
		if err != nil {
			secret = ""
		}
		c.Set(csrfIssuerKey, &tokenIssuer{store: cfg.Store, secret: secret, metrics: cfg.Metrics})

		if rule, ok := cfg.Exempt.Match(c.Request.URL.Path); ok {
			if cfg.Metrics != nil {
				cfg.Metrics.CSRFExempt.Inc()
			}
			if cfg.Logger != nil {
				cfg.Logger.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"rule": rule.String(),
				}).Debug("csrf exempt")
			}
			c.Next()
			return
		}

		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		reason := ""
		switch token := presentedToken(c); {
		case secret == "":
			reason = ReasonMissingSecret
		case token == "":
			reason = ReasonMissingToken
		case !csrf.VerifyToken(secret, token):
			reason = ReasonMismatch
		}

		if reason != "" {
			if cfg.Metrics != nil {
				cfg.Metrics.CSRFRejections.WithLabelValues(reason).Inc()
			}
			if cfg.Logger != nil {
				cfg.Logger.WithFields(logrus.Fields{
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"reason":     reason,
					"ip":         c.ClientIP(),
					"request_id": c.GetString(requestIDKey),
				}).Warn("csrf token rejected")
			}
			_ = c.Error(&CSRFError{Reason: reason})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CSRFToken returns a token for the current session, creating the secret
// cookie on first use.
func CSRFToken(c *gin.Context) (string, error) {
	v, ok := c.Get(csrfIssuerKey)
	if !ok {
		return "", ErrCSRFNotInstalled
	}
	iss, ok := v.(*tokenIssuer)
	if !ok {
		return "", ErrCSRFNotInstalled
	}
	return iss.issue(c.Writer)
}

type tokenIssuer struct {
	store   *csrf.Store
	secret  string
	metrics *metrics.Metrics
}

func (t *tokenIssuer) issue(w http.ResponseWriter) (string, error) {
	if t.secret == "" {
		secret, err := csrf.NewSecret()
		if err != nil {
			return "", err
		}
		t.store.SetSecret(w, secret)
		t.secret = secret
	}

	token, err := csrf.NewToken(t.secret)
	if err != nil {
		return "", err
	}
	if t.metrics != nil {
		t.metrics.TokensIssued.Inc()
	}
	return token, nil
}

// presentedToken looks in headers, then the body, then the query string.
func presentedToken(c *gin.Context) string {
	if v := c.GetHeader(HeaderCSRFToken); v != "" {
		return v
	}
	if v := c.GetHeader(HeaderAltCSRFToken); v != "" {
		return v
	}
	if body, ok := SanitizedBody(c); ok {
		if v := body.GetString(CSRFField); v != "" {
			return v
		}
	}
	if c.Request.PostForm != nil {
		if v := c.Request.PostForm.Get(CSRFField); v != "" {
			return v
		}
	}
	return c.Request.URL.Query().Get(CSRFField)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
