package middleware

import (
	"net/http"

	"cardioalert/internal/service"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AccessControlMiddleware restricts hospital-scoped actions to that hospital's staff
type AccessControlMiddleware struct {
	hospitals *service.HospitalService
}

func NewAccessControlMiddleware(hospitals *service.HospitalService) *AccessControlMiddleware {
	return &AccessControlMiddleware{hospitals: hospitals}
}

// RequireHospitalStaff verifies the user is staff of the hospital in the :hospital_id path parameter.
// Admins pass for every hospital.
func (m *AccessControlMiddleware) RequireHospitalStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := CurrentUserID(c)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		hospitalID := c.Param("hospital_id")
		if hospitalID == "" {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
			c.Abort()
			return
		}

		if err := m.hospitals.CheckStaffAccess(c.Request.Context(), userID, CurrentRole(c), hospitalID); err != nil {
			utils.AppErrorResponse(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
