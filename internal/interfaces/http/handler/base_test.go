package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/interfaces/http/dto"
	"github.com/academy/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid form", billing.ErrInvalidForm, http.StatusBadRequest, "invalid_form"},
		{"forbidden", billing.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"wrapped not found", fmt.Errorf("load: %w", billing.ErrEnrollmentNotFound), http.StatusNotFound, "enrollment_not_found"},
		{"business rule", billing.ErrAllocationExceedsPending, http.StatusUnprocessableEntity, "allocation_exceeds_pending"},
		{"posting busy", billing.ErrPostingInProgress, http.StatusConflict, "posting_in_progress"},
		{"insert failed", billing.ErrPaymentInsertFailed, http.StatusInternalServerError, "payment_insert_failed"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorHidesInternals(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
	assert.Len(t, c.Errors, 1)
}

func TestPageQuery(t *testing.T) {
	tests := map[string]int{"": 1, "3": 3, "0": 1, "-2": 1, "dos": 1}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/pending?page="+raw, nil)
			assert.Equal(t, want, pageQuery(c))
		})
	}
}

func TestOptionalUUIDQuery(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/teams?campus_id=nope", nil)
	_, err := optionalUUIDQuery(c, "campus_id")
	assert.ErrorIs(t, err, billing.ErrInvalidForm)

	c.Request = httptest.NewRequest(http.MethodGet, "/teams", nil)
	id, err := optionalUUIDQuery(c, "campus_id")
	require.NoError(t, err)
	assert.Nil(t, id)
}
