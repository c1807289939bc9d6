package admin_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	adminapi "civix-api/internal/api/admin"
	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"
	"civix-api/internal/domain/users"
	"civix-api/internal/infra/logger"
	"civix-api/internal/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestAdminHandlers(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := new(mocks.AdminStore)
	store.On("Stats", mock.Anything).Return(&adminapi.Stats{
		TotalUsers:       2,
		TotalIssues:      3,
		IssuesByStatus:   map[string]int64{"pending": 2, "resolved": 1},
		IssuesByCategory: map[string]int64{"roads": 3},
	}, nil)
	store.On("ListUsers", mock.Anything).Return([]users.User{
		{ID: 1, Name: "Ana", Email: "ana@civix.example", Password: "hash", Role: users.RoleAdmin, CreatedAt: created},
	}, nil)

	h := adminapi.NewHandler(store)
	r := gin.New()
	r.Use(middleware.Errors(middleware.ErrorsConfig{Logger: logger.Discard()}))
	r.GET("/stats", httperr.Handle(h.Stats))
	r.GET("/users", httperr.Handle(h.ListUsers))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_users":2,"total_issues":3,"issues_by_status":{"pending":2,"resolved":1},"issues_by_category":{"roads":3}}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Ana","email":"ana@civix.example","role":"admin","created_at":"2026-03-01T09:00:00Z"}]`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "hash")
}
