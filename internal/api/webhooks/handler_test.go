package webhooks_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	issuesapi "civix-api/internal/api/issues"
	webhooksapi "civix-api/internal/api/webhooks"
	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"
	"civix-api/internal/infra/logger"
	"civix-api/internal/infra/sanitizer"
	"civix-api/internal/mocks"
)

const issueID = "6f1f2a4e-7d3b-4c55-9a0e-2b9f6d8c1e01"

var secret = []byte("webhook-test-secret")

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newEngine(store *mocks.IssueStore, secret []byte) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Errors(middleware.ErrorsConfig{Logger: logger.Discard()}))
	r.Use(middleware.SanitizeInput(middleware.SanitizeConfig{Sanitizer: sanitizer.New()}))
	r.POST("/webhooks/media", httperr.Handle(webhooksapi.NewHandler(secret, store, logger.Discard()).Media))
	return r
}

func deliver(r http.Handler, body, signature, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/media", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if signature != "" {
		req.Header.Set(webhooksapi.HeaderSignature, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMedia(t *testing.T) {
	store := new(mocks.IssueStore)
	store.On("SetMediaURL", mock.Anything, issueID, "https://media.civix.example/p/1.jpg").Return(nil)

	// pretty-printed: the signature covers the bytes as sent, not the re-encoded body
	body := "{\n  \"issue_id\": \"" + issueID + "\",\n  \"secure_url\": \"https://media.civix.example/p/1.jpg\"\n}"
	w := deliver(newEngine(store, secret), body, webhooksapi.Sign(secret, []byte(body)), "application/json")

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"received"}`, w.Body.String())
	store.AssertExpectations(t)
}

func TestMedia_SignaturePrefixAccepted(t *testing.T) {
	store := new(mocks.IssueStore)
	store.On("SetMediaURL", mock.Anything, issueID, mock.Anything).Return(nil)

	body := `{"issue_id":"` + issueID + `","secure_url":"https://media.civix.example/p/2.jpg"}`
	w := deliver(newEngine(store, secret), body, "sha256="+webhooksapi.Sign(secret, []byte(body)), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMedia_Rejections(t *testing.T) {
	good := `{"issue_id":"` + issueID + `","secure_url":"https://media.civix.example/p/1.jpg"}`
	sign := func(b string) string { return webhooksapi.Sign(secret, []byte(b)) }

	tests := []struct {
		name      string
		secret    []byte
		body      string
		signature string
		ctype     string
		status    int
	}{
		{"not configured", nil, good, sign(good), "application/json", http.StatusServiceUnavailable},
		{"missing signature", secret, good, "", "application/json", http.StatusBadRequest},
		{"wrong signature", secret, good, webhooksapi.Sign([]byte("other"), []byte(good)), "application/json", http.StatusBadRequest},
		{"not json", secret, "issue_id=x", sign("issue_id=x"), "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"bad issue id", secret, `{"issue_id":"42","secure_url":"https://m.example/x"}`, sign(`{"issue_id":"42","secure_url":"https://m.example/x"}`), "application/json", http.StatusBadRequest},
		{"plain http url", secret, `{"issue_id":"` + issueID + `","secure_url":"http://m.example/x"}`, sign(`{"issue_id":"` + issueID + `","secure_url":"http://m.example/x"}`), "application/json", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.IssueStore)
			w := deliver(newEngine(store, tt.secret), tt.body, tt.signature, tt.ctype)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			store.AssertNotCalled(t, "SetMediaURL", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMedia_UnknownIssue(t *testing.T) {
	store := new(mocks.IssueStore)
	store.On("SetMediaURL", mock.Anything, issueID, mock.Anything).Return(issuesapi.ErrNotFound)

	body := `{"issue_id":"` + issueID + `","secure_url":"https://media.civix.example/p/1.jpg"}`
	w := deliver(newEngine(store, secret), body, webhooksapi.Sign(secret, []byte(body)), "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
