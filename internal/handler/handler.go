package handler

import (
	"net/http"

	"cardioalert/internal/middleware"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// requireUser returns the authenticated user id or writes a 401
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return 0, false
	}
	return userID, true
}

// roundKm rounds a distance to two decimal places for display
func roundKm(km float64) float64 {
	return decimal.NewFromFloat(km).Round(2).InexactFloat64()
}
