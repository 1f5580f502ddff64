package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrFileTooLarge.WithDetails(map[string]string{"file": "too big"})

	assert.Nil(t, ErrFileTooLarge.Details)
	assert.NotNil(t, withDetails.Details)
	assert.True(t, errors.Is(withDetails, ErrFileTooLarge))
}

func TestTaxonomyStatusCodes(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		name string
		err  *AppError
		code ErrorCode
		http int
	}{
		{"validation", NewValidationError("bio", "too long"), CodeValidationFailed, http.StatusBadRequest},
		{"not found", NotFoundError("profile", "missing"), CodeNotFound, http.StatusNotFound},
		{"upload", UploadError(cause), CodeUploadFailed, http.StatusBadGateway},
		{"delete", DeleteError(cause), CodeDeleteFailed, http.StatusBadGateway},
		{"persistence", PersistenceError(cause), CodePersistenceFailed, http.StatusInternalServerError},
		{"verification", VerificationError("denied", nil), CodeVerificationFailed, http.StatusUnprocessableEntity},
		{"conflict", ConflictError("stale"), CodeConflict, http.StatusConflict},
		{"crop", InvalidCropError(cause), CodeInvalidCrop, http.StatusUnprocessableEntity},
		{"canvas", CanvasUnavailableError(cause), CodeCanvasUnavailable, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.http, tc.err.HTTPCode)
		})
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("step failed: %w", ConflictError("stale"))

	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestHandleErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("app error keeps status", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleError(c, NewValidationError("services", "Select at least one service that you offer."))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, string(CodeValidationFailed), body["error"]["code"])
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleError(c, errors.New("db down"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}
