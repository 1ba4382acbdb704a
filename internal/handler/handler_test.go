package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pricewatch/backend/internal/apperror"
)

// TestRespondJSON tests
func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       interface{}
		expectBody bool
	}{
		{
			name:       "success with data",
			status:     http.StatusOK,
			data:       map[string]string{"message": "success"},
			expectBody: true,
		},
		{
			name:       "accepted with data",
			status:     http.StatusAccepted,
			data:       MessageResponse{Message: "Price poll started"},
			expectBody: true,
		},
		{
			name:       "no content",
			status:     http.StatusNoContent,
			data:       nil,
			expectBody: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondJSON(w, tt.status, tt.data)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.expectBody {
				assert.NotEmpty(t, w.Body.String())
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"bad request", http.StatusBadRequest, "invalid input"},
		{"unauthorized", http.StatusUnauthorized, "not authorized"},
		{"not found", http.StatusNotFound, "resource not found"},
		{"internal error", http.StatusInternalServerError, "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondError(w, tt.status, tt.message)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			assert.NoError(t, err)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestRespondAppError(t *testing.T) {
	tests := []struct {
		name       string
		appErr     *apperror.AppError
		wantStatus int
		wantError  string
		wantField  string
	}{
		{
			name:       "bad request",
			appErr:     apperror.BadRequest("invalid request body"),
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "validation error carries field",
			appErr:     apperror.ValidationError("quantity", "quantity must be between 1 and 100"),
			wantStatus: http.StatusBadRequest,
			wantError:  "quantity must be between 1 and 100",
			wantField:  "quantity",
		},
		{
			name:       "not found",
			appErr:     apperror.NotFound("watch"),
			wantStatus: http.StatusNotFound,
			wantError:  "watch not found",
		},
		{
			name:       "unauthorized",
			appErr:     apperror.Unauthorized("Invalid signature"),
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid signature",
		},
		{
			name:       "internal hides the cause",
			appErr:     apperror.Internal(errors.New("pq: connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondAppError(w, tt.appErr)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}

func TestRespondText(t *testing.T) {
	w := httptest.NewRecorder()
	respondText(w, http.StatusOK, "1158201444")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "1158201444", w.Body.String())
}

// Benchmark tests
func BenchmarkRespondJSON(b *testing.B) {
	data := map[string]interface{}{
		"message": "test message",
		"count":   100,
	}

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		respondJSON(w, http.StatusOK, data)
	}
}

func BenchmarkRespondError(b *testing.B) {
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		respondError(w, http.StatusBadRequest, "test error message")
	}
}
