package handler

import (
	"net/http"

	"cardioalert/internal/service"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
)

// NextStepAfterVerify is where a client goes once payment is verified
const NextStepAfterVerify = "/api/alerts/send"

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

type CreateOrderRequest struct {
	Tier      int      `json:"tier" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Symptoms  string   `json:"symptoms"`
	Message   string   `json:"message"`
}

type VerifyPaymentRequest struct {
	AlertID   string `json:"alertId" binding:"required"`
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature"`
}

// CreateOrder opens a payment order for a tiered alert
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "tier, latitude and longitude are required")
		return
	}

	res, err := h.paymentService.CreateOrder(c.Request.Context(), userID, service.CreateOrderInput{
		Tier:      req.Tier,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Symptoms:  req.Symptoms,
		Message:   req.Message,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	hospitals := make([]gin.H, 0, len(res.Hospitals))
	for _, hosp := range res.Hospitals {
		hospitals = append(hospitals, gin.H{
			"id":         hosp.ID,
			"name":       hosp.Name,
			"distanceKm": roundKm(hosp.DistanceKm),
		})
	}

	utils.CreatedResponse(c, gin.H{
		"alertId": res.Alert.ID,
		"order": gin.H{
			"id":            res.Order.ID,
			"amount":        res.Payment.AmountMinor,
			"currency":      res.Payment.Currency,
			"amountDisplay": utils.FormatMinorUnits(res.Payment.AmountMinor),
			"simulated":     res.Payment.Simulated,
		},
		"tier": gin.H{
			"level":         res.Tier.Level,
			"hospitalCount": res.Tier.HospitalCount,
			"hospitals":     hospitals,
		},
		"keyId": res.KeyID,
	})
}

// Verify checks the processor signature and marks the alert paid
func (h *PaymentHandler) Verify(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "alertId, orderId and paymentId are required")
		return
	}

	res, err := h.paymentService.Verify(c.Request.Context(), userID, service.VerifyInput{
		AlertID:   req.AlertID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"alertId":   res.AlertID,
		"paymentId": res.PaymentID,
		"simulated": res.Simulated,
		"duplicate": res.Duplicate,
		"nextStep":  NextStepAfterVerify,
	})
}

// History lists the caller's payments
func (h *PaymentHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	history, err := h.paymentService.History(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	payments := make([]gin.H, 0, len(history))
	for _, entry := range history {
		item := gin.H{
			"alertId":     entry.Alert.ID,
			"tier":        entry.Alert.Tier,
			"alertStatus": entry.Alert.Status,
			"createdAt":   entry.Alert.CreatedAt,
		}
		if p := entry.Payment; p != nil {
			item["orderId"] = p.OrderID
			item["paymentId"] = p.PaymentRef
			item["amount"] = p.AmountMinor
			item["amountDisplay"] = utils.FormatMinorUnits(p.AmountMinor)
			item["currency"] = p.Currency
			item["status"] = p.Status
			item["simulated"] = p.Simulated
		}
		payments = append(payments, item)
	}

	utils.SuccessResponse(c, gin.H{
		"payments": payments,
		"count":    len(payments),
	})
}
