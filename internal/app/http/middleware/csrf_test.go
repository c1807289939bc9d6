package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civix-api/internal/app/http/middleware"
	"civix-api/internal/infra/csrf"
	"civix-api/internal/infra/logger"
	"civix-api/internal/infra/metrics"
	"civix-api/internal/infra/sanitizer"
)

type csrfFixture struct {
	engine  *gin.Engine
	metrics *metrics.Metrics
	log     *logtest.Hook
}

func newCSRFFixture(t *testing.T, keys ...string) *csrfFixture {
	t.Helper()
	if len(keys) == 0 {
		keys = []string{testSigningKey}
	}
	store, err := csrf.NewStore(keys)
	require.NoError(t, err)
	exempt, err := csrf.ParseRules([]string{"/api/webhooks", `^/api/public/v\d+/`})
	require.NoError(t, err)

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	m := metrics.New()

	r := gin.New()
	r.Use(middleware.Errors(middleware.ErrorsConfig{Logger: logger.Discard()}))
	r.Use(middleware.CSRFErrors())
	r.Use(middleware.SanitizeInput(middleware.SanitizeConfig{Sanitizer: sanitizer.New()}))
	r.Use(middleware.CSRF(middleware.CSRFConfig{Store: store, Exempt: exempt, Logger: log, Metrics: m}))

	r.GET("/api/csrf-token", func(c *gin.Context) {
		token, err := middleware.CSRFToken(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"csrfToken": token})
	})
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		r.Handle(method, "/api/issues", ok)
	}
	r.POST("/api/webhooks/media", ok)
	r.POST("/api/public/v2/ping", ok)

	return &csrfFixture{engine: r, metrics: m, log: hook}
}

// session fetches a token and returns it with the secret cookie.
func (f *csrfFixture) session(t *testing.T) (string, *http.Cookie) {
	t.Helper()
	w := do(f.engine, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.CSRFToken)
	return body.CSRFToken, cookies[0]
}

func TestCSRF_RoundTrip(t *testing.T) {
	f := newCSRFFixture(t)
	token, cookie := f.session(t)

	assert.Equal(t, csrf.DefaultCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)

	req := jsonRequest(http.MethodPost, "/api/issues", `{"title":"Pothole"}`)
	req.Header.Set(middleware.HeaderCSRFToken, token)
	req.AddCookie(cookie)

	w := do(f.engine, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.TokensIssued))
}

func TestCSRF_TokenSources(t *testing.T) {
	f := newCSRFFixture(t)
	token, cookie := f.session(t)

	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{"x-csrf-token header", func() *http.Request {
			r := jsonRequest(http.MethodPut, "/api/issues", `{}`)
			r.Header.Set("x-csrf-token", token)
			return r
		}},
		{"csrf-token header", func() *http.Request {
			r := jsonRequest(http.MethodPatch, "/api/issues", `{}`)
			r.Header.Set("csrf-token", token)
			return r
		}},
		{"json body field", func() *http.Request {
			return jsonRequest(http.MethodPost, "/api/issues", `{"title":"x","_csrf":"`+token+`"}`)
		}},
		{"form body field", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/api/issues", strings.NewReader(url.Values{"_csrf": {token}}.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return r
		}},
		{"query field", func() *http.Request {
			return httptest.NewRequest(http.MethodDelete, "/api/issues?_csrf="+url.QueryEscape(token), nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req()
			req.AddCookie(cookie)
			w := do(f.engine, req)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}

func TestCSRF_HeaderWinsOverBody(t *testing.T) {
	f := newCSRFFixture(t)
	token, cookie := f.session(t)

	req := jsonRequest(http.MethodPost, "/api/issues", `{"_csrf":"`+token+`"}`)
	req.Header.Set(middleware.HeaderCSRFToken, "0123456789abcdef-forged")
	req.AddCookie(cookie)

	w := do(f.engine, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRF_Rejections(t *testing.T) {
	f := newCSRFFixture(t)
	token, cookie := f.session(t)
	_, otherCookie := f.session(t)

	altered := []byte(token)
	if altered[len(altered)-1] == 'A' {
		altered[len(altered)-1] = 'B'
	} else {
		altered[len(altered)-1] = 'A'
	}

	tests := []struct {
		name   string
		token  string
		cookie *http.Cookie
		reason string
	}{
		{"no cookie", token, nil, middleware.ReasonMissingSecret},
		{"tampered cookie", token, &http.Cookie{Name: cookie.Name, Value: "forged.c2ln"}, middleware.ReasonMissingSecret},
		{"no token", "", cookie, middleware.ReasonMissingToken},
		{"altered token", string(altered), cookie, middleware.ReasonMismatch},
		{"token from another session", token, otherCookie, middleware.ReasonMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.log.Reset()
			before := testutil.ToFloat64(f.metrics.CSRFRejections.WithLabelValues(tt.reason))

			req := jsonRequest(http.MethodPost, "/api/issues", `{"title":"Pothole"}`)
			if tt.token != "" {
				req.Header.Set(middleware.HeaderCSRFToken, tt.token)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			w := do(f.engine, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, csrfBody, w.Body.String())
			assert.Equal(t, before+1, testutil.ToFloat64(f.metrics.CSRFRejections.WithLabelValues(tt.reason)))

			entry := f.log.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.WarnLevel, entry.Level)
			assert.Equal(t, tt.reason, entry.Data["reason"])
		})
	}
}

func TestCSRF_SafeMethodsSkipValidation(t *testing.T) {
	f := newCSRFFixture(t)
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w := do(f.engine, httptest.NewRequest(method, "/api/issues", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := do(f.engine, httptest.NewRequest(method, "/api/issues", nil))
		assert.Equal(t, http.StatusForbidden, w.Code, method)
	}
}

func TestCSRF_ExemptPaths(t *testing.T) {
	f := newCSRFFixture(t)

	w := do(f.engine, jsonRequest(http.MethodPost, "/api/webhooks/media", `{"issue_id":"x"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(f.engine, httptest.NewRequest(http.MethodPost, "/api/public/v2/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.CSRFExempt))
}

func TestCSRF_TokenEndpointReusesSecret(t *testing.T) {
	f := newCSRFFixture(t)
	first, cookie := f.session(t)

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	req.AddCookie(cookie)
	w := do(f.engine, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies(), "existing secret must not be replaced")

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEqual(t, first, body.CSRFToken)

	// both tokens verify against the one secret
	for _, tok := range []string{first, body.CSRFToken} {
		req := httptest.NewRequest(http.MethodPost, "/api/issues", bytes.NewReader(nil))
		req.Header.Set(middleware.HeaderCSRFToken, tok)
		req.AddCookie(cookie)
		assert.Equal(t, http.StatusOK, do(f.engine, req).Code)
	}
}

func TestCSRF_ReplicasShareKeys(t *testing.T) {
	a := newCSRFFixture(t, testSigningKey)
	b := newCSRFFixture(t, "second-replica-key-32-characters!", testSigningKey)

	token, cookie := a.session(t)

	req := jsonRequest(http.MethodPost, "/api/issues", `{}`)
	req.Header.Set(middleware.HeaderCSRFToken, token)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusOK, do(b.engine, req).Code)
}

func TestCSRFToken_WithoutGuard(t *testing.T) {
	r := gin.New()
	r.GET("/t", func(c *gin.Context) {
		_, err := middleware.CSRFToken(c)
		assert.ErrorIs(t, err, middleware.ErrCSRFNotInstalled)
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodGet, "/t", nil)).Code)
}

func TestCSRFError(t *testing.T) {
	err := error(&middleware.CSRFError{Reason: middleware.ReasonMismatch})
	assert.ErrorIs(t, err, csrf.ErrTokenInvalid)
	assert.Contains(t, err.Error(), "mismatch")
}
