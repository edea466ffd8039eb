package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsledger/backend/internal/domain/shared"
	"github.com/partsledger/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetCompanyID(t *testing.T) {
	t.Run("parses company header", func(t *testing.T) {
		c, _ := newTestContext(t)
		companyID := uuid.New()
		c.Request.Header.Set("X-Company-ID", companyID.String())

		got, err := getCompanyID(c)

		assert.NoError(t, err)
		assert.Equal(t, companyID, got)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		c, _ := newTestContext(t)

		_, err := getCompanyID(c)

		assert.Error(t, err)
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Request.Header.Set("X-Company-ID", "not-a-uuid")

		_, err := getCompanyID(c)

		assert.Error(t, err)
	})
}

func TestGetUserID(t *testing.T) {
	t.Run("parses user header", func(t *testing.T) {
		c, _ := newTestContext(t)
		userID := uuid.New()
		c.Request.Header.Set("X-User-ID", userID.String())

		got := getUserID(c)

		require.NotNil(t, got)
		assert.Equal(t, userID, *got)
	})

	t.Run("returns nil when absent or malformed", func(t *testing.T) {
		c, _ := newTestContext(t)
		assert.Nil(t, getUserID(c))

		c.Request.Header.Set("X-User-ID", "garbage")
		assert.Nil(t, getUserID(c))
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("maps business rule violations to 422", func(t *testing.T) {
		for _, err := range []error{
			shared.ErrInsufficientStock,
			shared.ErrInsufficientReservation,
			shared.ErrNegativeStock,
			shared.ErrInvalidReference,
		} {
			c, w := newTestContext(t)
			h.HandleError(c, err)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		}
	})

	t.Run("maps not found to 404", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("maps concurrency conflict to 409", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.ErrConcurrencyConflict)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("maps invalid movement type to 400", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.ErrInvalidMovementType)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "INVALID_MOVEMENT_TYPE", resp.Error.Code)
	})

	t.Run("maps storage failures to 503", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.NewStorageError(errors.New("connection reset")))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "STORAGE_UNAVAILABLE", resp.Error.Code)
	})

	t.Run("maps unknown errors to 500", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	})

	t.Run("ignores nil error", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, nil)

		assert.Empty(t, w.Body.Bytes())
	})
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success envelope", func(t *testing.T) {
		c, w := newTestContext(t)

		h.Success(c, map[string]string{"key": "value"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
	})

	t.Run("created envelope", func(t *testing.T) {
		c, w := newTestContext(t)

		h.Created(c, map[string]string{"id": "1"})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("meta carries pagination", func(t *testing.T) {
		c, w := newTestContext(t)

		h.SuccessWithMeta(c, []int{1, 2}, 42, 2, 20)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(42), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})
}
