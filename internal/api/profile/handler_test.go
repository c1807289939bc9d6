package profile_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	profileapi "civix-api/internal/api/profile"
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

func newEngine(store *mocks.ProfileStore, userID uint) *gin.Engine {
	h := profileapi.NewHandler(store)
	r := gin.New()
	r.Use(middleware.Errors(middleware.ErrorsConfig{Logger: logger.Discard()}))
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(middleware.UserIDKey, userID)
		}
	})
	r.GET("/profile", httperr.Handle(h.Get))
	r.PUT("/profile", httperr.Handle(h.Update))
	return r
}

func TestGet(t *testing.T) {
	store := new(mocks.ProfileStore)
	store.On("GetProfile", mock.Anything, uint(5)).Return(&users.User{
		ID: 5, Name: "Ana", Email: "ana@civix.example", Role: users.RoleCitizen,
		Profile: &users.Profile{Phone: "555-0100", Address: "Main St 1"},
	}, nil)

	w := httptest.NewRecorder()
	newEngine(store, 5).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5,"name":"Ana","email":"ana@civix.example","role":"citizen","phone":"555-0100","address":"Main St 1","bio":""}`, w.Body.String())
}

func TestGet_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(new(mocks.ProfileStore), 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdate(t *testing.T) {
	store := new(mocks.ProfileStore)
	store.On("UpdateProfile", mock.Anything, uint(5), profileapi.Changes{Name: "Ana B", Phone: "555-0199", Bio: "Cyclist"}).
		Return(&users.User{ID: 5, Name: "Ana B", Profile: &users.Profile{Phone: "555-0199", Bio: "Cyclist"}}, nil)
	store.On("UpdateProfile", mock.Anything, uint(9), mock.Anything).Return(nil, profileapi.ErrNotFound)

	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"name":" Ana B ","phone":"555-0199","bio":"Cyclist"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newEngine(store, 5).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"bio":"Cyclist"`)

	req = httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"name":"Ghost"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	newEngine(store, 9).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertExpectations(t)
}
