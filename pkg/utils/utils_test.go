package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cardioalert/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "₹1.00", FormatMinorUnits(100))
	assert.Equal(t, "₹2.50", FormatMinorUnits(250))
	assert.Equal(t, "₹0.05", FormatMinorUnits(5))
	assert.Equal(t, "₹1234.56", FormatMinorUnits(123456))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("access", "refresh", time.Minute, time.Hour)

	token, err := GenerateAccessToken(42, "a@example.com", "user")
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	InitJWT("rotated", "refresh", time.Minute, time.Hour)
	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	InitJWT("access", "refresh", -time.Minute, time.Hour)
	token, err := GenerateAccessToken(1, "a@example.com", "user")
	require.NoError(t, err)

	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	SetBcryptCost(4)
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, ComparePassword(hash, "hunter22"))
	assert.False(t, ComparePassword(hash, "hunter23"))
}

func TestAppErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperror.Precondition(apperror.ReasonPaymentIncomplete, "payment not completed"), http.StatusBadRequest, "PAYMENT_INCOMPLETE"},
		{apperror.Precondition(apperror.ReasonDispatchInProgress, "busy"), http.StatusConflict, "DISPATCH_IN_PROGRESS"},
		{apperror.NotFound("alert", "a1"), http.StatusNotFound, "NOT_FOUND"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		AppErrorResponse(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tc.code, body["code"])
	}
}
