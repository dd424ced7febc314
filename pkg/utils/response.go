package utils

import (
	"errors"
	"net/http"

	"cardioalert/internal/apperror"
	"cardioalert/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SuccessResponse sends a standard success JSON response
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// CreatedResponse sends a 201 success JSON response
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// ErrorResponse sends a standard error JSON response
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// MessageResponse sends a simple message response
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// AppErrorResponse maps err to its HTTP status and writes the error envelope.
// Errors outside the apperror taxonomy are logged and answered with a generic 500.
func AppErrorResponse(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal server error",
			"code":    string(apperror.KindInternal),
		})
		return
	}

	status := appErr.HTTPStatus()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		message = "internal server error"
	}

	body := gin.H{
		"success": false,
		"error":   message,
		"code":    appErr.Code(),
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(status, body)
}
