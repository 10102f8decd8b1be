// internal/handlers/clearance_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brydge/brydge-backend/internal/matching"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/repository"
	"github.com/brydge/brydge-backend/internal/services"
)

type clearanceAPIFixture struct {
	router   *gin.Engine
	service  *services.ClearanceService
	musician uuid.UUID
	holder   uuid.UUID
	original models.OriginalWork
	derived  models.DerivativeWork
}

// testAuth stands in for the JWT middleware and injects the identity
// the test request carries in headers.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("user_id", id)
			c.Set("user_type", c.GetHeader("X-Test-Type"))
		}
		c.Next()
	}
}

func newClearanceAPIFixture(t *testing.T) *clearanceAPIFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &clearanceAPIFixture{
		musician: uuid.New(),
		holder:   uuid.New(),
	}

	works := repository.NewMemoryWorkRepository()
	repo := repository.NewMemoryClearanceRepository()
	f.service = services.NewClearanceService(repo, works, nil)
	matchingService := services.NewMatchingService(works, matching.NewMatcher(0.5, 10), f.service)
	handler := NewClearanceHandler(f.service, matchingService)

	f.original = models.OriginalWork{
		OwnerID:     f.holder,
		Title:       "Summer Breaks",
		Artist:      "The Holders",
		Fingerprint: strings.Repeat("A", 24),
	}
	f.original.ID = uuid.New()
	works.AddOriginal(f.original)

	f.derived = models.DerivativeWork{
		OwnerID:     f.musician,
		Title:       "Summer Breaks Flip",
		Artist:      "MC Requester",
		Fingerprint: strings.Repeat("A", 20) + "zzzz",
	}
	f.derived.ID = uuid.New()
	works.AddDerivative(f.derived)

	f.router = gin.New()
	f.router.Use(testAuth())
	v1 := f.router.Group("/v1")
	clearances := v1.Group("/clearances")
	{
		clearances.POST("", handler.Create)
		clearances.GET("/statistics", handler.Statistics)
		clearances.GET("/:id", handler.Get)
		clearances.POST("/:id/respond", handler.Respond)
		clearances.POST("/:id/counter", handler.Counter)
		clearances.POST("/:id/accept", handler.Accept)
	}
	return f
}

func (f *clearanceAPIFixture) do(t *testing.T, caller uuid.UUID, userType models.UserType, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != uuid.Nil {
		req.Header.Set("X-Test-User", caller.String())
		req.Header.Set("X-Test-Type", string(userType))
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()

	var body struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	return body.Error.Code, body.Error.Message
}

func (f *clearanceAPIFixture) createRequest(t *testing.T) uuid.UUID {
	t.Helper()

	w := f.do(t, f.musician, models.UserTypeMusician, http.MethodPost, "/v1/clearances", gin.H{
		"derivative_work_id": f.derived.ID,
		"original_work_id":   f.original.ID,
		"usage_description":  "8 bar loop of the chorus",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Clearance models.ClearanceRequest `json:"clearance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEqual(t, uuid.Nil, body.Data.Clearance.ID)
	return body.Data.Clearance.ID
}

func TestCreateClearanceEndpoint(t *testing.T) {
	f := newClearanceAPIFixture(t)

	w := f.do(t, f.musician, models.UserTypeMusician, http.MethodPost, "/v1/clearances", gin.H{
		"derivative_work_id": f.derived.ID,
		"original_work_id":   f.original.ID,
		"usage_description":  "8 bar loop of the chorus",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Clearance models.ClearanceRequest `json:"clearance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, models.ClearanceStatusPending, body.Data.Clearance.Status)
	assert.Equal(t, int64(1), body.Data.Clearance.Version)
}

func TestCreateClearanceEndpointRequiresAuth(t *testing.T) {
	f := newClearanceAPIFixture(t)

	w := f.do(t, uuid.Nil, "", http.MethodPost, "/v1/clearances", gin.H{
		"derivative_work_id": f.derived.ID,
		"original_work_id":   f.original.ID,
		"usage_description":  "8 bar loop",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateClearanceEndpointValidation(t *testing.T) {
	f := newClearanceAPIFixture(t)

	// usage_description omitted
	w := f.do(t, f.musician, models.UserTypeMusician, http.MethodPost, "/v1/clearances", gin.H{
		"derivative_work_id": f.derived.ID,
		"original_work_id":   f.original.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondEndpointWrongParty(t *testing.T) {
	f := newClearanceAPIFixture(t)
	id := f.createRequest(t)

	// the requester cannot respond to their own request
	w := f.do(t, f.musician, models.UserTypeMusician, http.MethodPost,
		fmt.Sprintf("/v1/clearances/%s/respond", id), gin.H{
			"decision":     "approve",
			"terms_of_use": "non-commercial only",
			"version":      1,
		})
	assert.Equal(t, http.StatusForbidden, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "UNAUTHORIZED", code)
}

func TestRespondEndpointStaleVersion(t *testing.T) {
	f := newClearanceAPIFixture(t)
	id := f.createRequest(t)

	first := f.do(t, f.holder, models.UserTypeRightsHolder, http.MethodPost,
		fmt.Sprintf("/v1/clearances/%s/respond", id), gin.H{
			"decision": "negotiate",
			"notes":    "need a higher royalty",
			"version":  1,
		})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	// replaying the same version loses
	second := f.do(t, f.holder, models.UserTypeRightsHolder, http.MethodPost,
		fmt.Sprintf("/v1/clearances/%s/respond", id), gin.H{
			"decision": "negotiate",
			"notes":    "need a higher royalty",
			"version":  1,
		})
	assert.Equal(t, http.StatusConflict, second.Code)
	code, _ := decodeError(t, second)
	assert.Equal(t, "CONCURRENT_MODIFICATION", code)
}

func TestAcceptEndpointInvalidTransition(t *testing.T) {
	f := newClearanceAPIFixture(t)
	id := f.createRequest(t)

	// pending requests cannot be finalized
	w := f.do(t, f.musician, models.UserTypeMusician, http.MethodPost,
		fmt.Sprintf("/v1/clearances/%s/accept", id), gin.H{"version": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "INVALID_TRANSITION", code)
}

func TestGetClearanceEndpointNotFound(t *testing.T) {
	f := newClearanceAPIFixture(t)

	w := f.do(t, f.musician, models.UserTypeMusician, http.MethodGet,
		fmt.Sprintf("/v1/clearances/%s", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "NOT_FOUND", code)
}

func TestGetClearanceEndpointBadID(t *testing.T) {
	f := newClearanceAPIFixture(t)

	w := f.do(t, f.musician, models.UserTypeMusician, http.MethodGet,
		"/v1/clearances/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFullNegotiationOverHTTP(t *testing.T) {
	f := newClearanceAPIFixture(t)
	id := f.createRequest(t)

	respond := f.do(t, f.holder, models.UserTypeRightsHolder, http.MethodPost,
		fmt.Sprintf("/v1/clearances/%s/respond", id), gin.H{
			"decision":           "approve",
			"terms_of_use":       "credit required",
			"royalty_percentage": 20.0,
			"version":            1,
		})
	require.Equal(t, http.StatusOK, respond.Code, respond.Body.String())

	accept := f.do(t, f.musician, models.UserTypeMusician, http.MethodPost,
		fmt.Sprintf("/v1/clearances/%s/accept", id), gin.H{"version": 2})
	require.Equal(t, http.StatusOK, accept.Code, accept.Body.String())

	var body struct {
		Data struct {
			Clearance models.ClearanceRequest `json:"clearance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(accept.Body.Bytes(), &body))
	assert.Equal(t, models.ClearanceStatusFinalized, body.Data.Clearance.Status)
	require.NotNil(t, body.Data.Clearance.FinalizedDate)
	require.NotNil(t, body.Data.Clearance.RoyaltyPercentage)
	assert.InDelta(t, 20.0, *body.Data.Clearance.RoyaltyPercentage, 1e-9)
}
