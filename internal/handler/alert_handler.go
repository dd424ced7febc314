package handler

import (
	"net/http"

	"cardioalert/internal/service"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	alertService *service.AlertService
}

func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

type SendAlertRequest struct {
	AlertID string `json:"alertId" binding:"required"`
}

// Send dispatches a paid alert to nearby hospitals
func (h *AlertHandler) Send(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SendAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "alertId is required")
		return
	}

	report, err := h.alertService.Dispatch(c.Request.Context(), userID, req.AlertID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	sent := 0
	hospitals := make([]gin.H, 0, len(report.Results))
	for _, r := range report.Results {
		if r.Success() {
			sent++
		}
		hospitals = append(hospitals, gin.H{
			"id":               r.HospitalID,
			"name":             r.HospitalName,
			"distanceKm":       roundKm(r.DistanceKm),
			"notificationSent": r.Success(),
			"mock":             r.Mock(),
		})
	}

	utils.SuccessResponse(c, gin.H{
		"alertId":   report.AlertID,
		"status":    "sent",
		"sentCount": sent,
		"hospitals": hospitals,
	})
}

// History lists the caller's alerts with payment and hospital state
func (h *AlertHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	history, err := h.alertService.History(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	alerts := make([]gin.H, 0, len(history))
	for i := range history {
		alerts = append(alerts, alertDetailResponse(&history[i]))
	}

	utils.SuccessResponse(c, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetAlert returns one of the caller's alerts
func (h *AlertHandler) GetAlert(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	detail, err := h.alertService.GetAlert(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, alertDetailResponse(detail))
}

// Acknowledge records that a hospital has seen the alert. Staff access is checked by middleware.
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	link, err := h.alertService.Acknowledge(c.Request.Context(), c.Param("id"), c.Param("hospital_id"), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"alertId":        link.AlertID,
		"hospitalId":     link.HospitalID,
		"acknowledged":   link.Acknowledged,
		"acknowledgedAt": link.AcknowledgedAt,
	})
}

func alertDetailResponse(d *service.AlertDetail) gin.H {
	hospitals := make([]gin.H, 0, len(d.Hospitals))
	for _, l := range d.Hospitals {
		hospitals = append(hospitals, gin.H{
			"id":               l.HospitalID,
			"name":             l.HospitalName,
			"phone":            l.HospitalPhone,
			"notificationSent": l.NotificationSent,
			"sentAt":           l.SentAt,
			"acknowledged":     l.Acknowledged,
			"acknowledgedAt":   l.AcknowledgedAt,
		})
	}

	resp := gin.H{
		"id":        d.Alert.ID,
		"tier":      d.Alert.Tier,
		"status":    d.Alert.Status,
		"symptoms":  d.Alert.Symptoms,
		"message":   d.Alert.Message,
		"latitude":  d.Alert.Latitude,
		"longitude": d.Alert.Longitude,
		"createdAt": d.Alert.CreatedAt,
		"hospitals": hospitals,
	}
	if p := d.Payment; p != nil {
		resp["payment"] = gin.H{
			"orderId":       p.OrderID,
			"paymentId":     p.PaymentRef,
			"amount":        p.AmountMinor,
			"amountDisplay": utils.FormatMinorUnits(p.AmountMinor),
			"status":        p.Status,
			"simulated":     p.Simulated,
		}
	}
	return resp
}
