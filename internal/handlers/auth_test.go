// internal/handlers/auth_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brydge/brydge-backend/internal/services"
)

func newAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewAuthHandler(services.NewAuthService(nil, nil))

	r := gin.New()
	r.Use(testAuth())
	r.PUT("/v1/auth/me", handler.UpdateProfile)
	return r
}

func TestUpdateProfileEndpointRequiresAuth(t *testing.T) {
	r := newAuthTestRouter()

	req := httptest.NewRequest(http.MethodPut, "/v1/auth/me", strings.NewReader(`{"username":"newname"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfileEndpointRejectsBadUsername(t *testing.T) {
	r := newAuthTestRouter()

	req := httptest.NewRequest(http.MethodPut, "/v1/auth/me", strings.NewReader(`{"username":"!!"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", uuid.NewString())
	req.Header.Set("X-Test-Type", "musician")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
