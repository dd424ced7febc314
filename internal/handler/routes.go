package handler

import (
	"cardioalert/internal/middleware"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Auth     *AuthHandler
	Hospital *HospitalHandler
	Payment  *PaymentHandler
	Alert    *AlertHandler
	Access   *middleware.AccessControlMiddleware
}

// RegisterRoutes mounts the API under /api
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "cardioalert",
		})
	})

	api := r.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)

		auth.POST("/location", middleware.AuthMiddleware(), h.Auth.UpdateLocation)
		auth.POST("/fcm-token", middleware.AuthMiddleware(), h.Auth.UpdateFCMToken)
		auth.GET("/me", middleware.AuthMiddleware(), h.Auth.Me)
	}

	hospitals := api.Group("/hospitals")
	{
		hospitals.GET("/nearby", middleware.OptionalAuth(), h.Hospital.Nearby)
		hospitals.GET("", h.Hospital.GetAllHospitals)
		hospitals.GET("/:id", h.Hospital.GetHospital)

		// Admin-only routes
		admin := hospitals.Group("", middleware.AuthMiddleware(), middleware.RequireAdmin())
		admin.POST("", h.Hospital.CreateHospital)
		admin.PUT("/:id", h.Hospital.UpdateHospital)
		admin.DELETE("/:id", h.Hospital.DeleteHospital)
		admin.POST("/:id/staff", h.Hospital.AssignStaff)
	}

	payments := api.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("/create-order", h.Payment.CreateOrder)
		payments.POST("/verify", h.Payment.Verify)
		payments.GET("/history", h.Payment.History)
	}

	alerts := api.Group("/alerts")
	alerts.Use(middleware.AuthMiddleware())
	{
		alerts.POST("/send", h.Alert.Send)
		alerts.GET("/history", h.Alert.History)
		alerts.GET("/:id", h.Alert.GetAlert)
		alerts.POST("/:id/hospitals/:hospital_id/acknowledge", h.Access.RequireHospitalStaff(), h.Alert.Acknowledge)
	}
}
