package handler

import (
	"errors"
	"net/http"

	"cardioalert/internal/service"
	"cardioalert/pkg/logger"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FCMToken string `json:"fcmToken"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type FCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(
		refreshCookie,
		token,
		int(utils.GetRefreshTokenExpiry().Seconds()),
		"/",
		"",
		false, // secure (set to true in production with HTTPS)
		true,  // httpOnly
	)
}

// refreshToken reads the refresh token from the cookie, falling back to the JSON body for mobile clients
func (h *AuthHandler) refreshToken(c *gin.Context) string {
	if token, err := c.Cookie(refreshCookie); err == nil && token != "" {
		return token
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) tokensResponse(c *gin.Context, status int, response *service.LoginResponse) {
	h.setRefreshCookie(c, response.RefreshToken)
	c.JSON(status, gin.H{
		"success": true,
		"data": gin.H{
			"access_token":  response.AccessToken,
			"refresh_token": response.RefreshToken,
			"user":          response.User,
		},
	})
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	h.tokensResponse(c, http.StatusCreated, response)
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		utils.AppErrorResponse(c, err)
		return
	}

	if req.FCMToken != "" {
		if err := h.authService.UpdateFCMToken(c.Request.Context(), response.User.ID, req.FCMToken); err != nil {
			logger.Warn("Failed to store FCM token at login", zap.Uint("user_id", response.User.ID), zap.Error(err))
		}
	}

	h.tokensResponse(c, http.StatusOK, response)
}

// Refresh generates a new access token from refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := h.refreshToken(c)
	if refreshToken == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"access_token": accessToken,
	})
}

// Logout revokes the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken := h.refreshToken(c)
	if refreshToken != "" {
		if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to logout")
			return
		}
	}

	// Clear the cookie
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)

	utils.MessageResponse(c, "Logged out successfully")
}

// UpdateLocation stores the caller's last known position
func (h *AuthHandler) UpdateLocation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}

	if err := h.authService.UpdateLocation(c.Request.Context(), userID, *req.Latitude, *req.Longitude); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.MessageResponse(c, "Location updated")
}

// UpdateFCMToken stores the caller's push token
func (h *AuthHandler) UpdateFCMToken(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req FCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "FCM token is required")
		return
	}

	if err := h.authService.UpdateFCMToken(c.Request.Context(), userID, req.FCMToken); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.MessageResponse(c, "FCM token updated")
}

// Me returns the caller's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}
