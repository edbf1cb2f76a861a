package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"spa-booking-backend/cart"
	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"
	"spa-booking-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err    error
		status int
	}{
		{&services.LineNotFoundError{Missing: []string{"X"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", &services.ValidationError{Field: "email", Message: "is required"}), http.StatusBadRequest},
		{services.ErrInsufficientPayment, http.StatusBadRequest},
		{services.ErrEmptyCart, http.StatusBadRequest},
		{cart.ErrAreaNotOffered, http.StatusBadRequest},
		{cart.ErrLineNotFound, http.StatusNotFound},
		{services.ErrNotFound, http.StatusNotFound},
		{repository.ErrRequestInFlight, http.StatusConflict},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, config.NopLogger(), tt.err)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Internal server error", body["error"])
			}
		})
	}
}

func TestMergeCustomer(t *testing.T) {
	got := mergeCustomer(
		models.CustomerSnapshot{Name: "Lan B"},
		models.CustomerSnapshot{Name: "Lan", Email: "lan@example.com", Phone: "+84912345678"},
	)
	assert.Equal(t, "Lan B", got.Name)
	assert.Equal(t, "lan@example.com", got.Email)
	assert.Equal(t, "+84912345678", got.Phone)
}
