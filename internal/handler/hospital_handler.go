package handler

import (
	"math"
	"net/http"
	"strconv"

	"cardioalert/internal/apperror"
	"cardioalert/internal/geo"
	"cardioalert/internal/models"
	"cardioalert/internal/service"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultNearbyRadiusKm = 10
	defaultNearbyLimit    = 10
	maxNearbyLimit        = 50
)

type HospitalHandler struct {
	hospitalService *service.HospitalService
}

func NewHospitalHandler(hospitalService *service.HospitalService) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
	}
}

type AssignStaffRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type nearbyHospitalResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distanceKm"`
}

func newNearbyResponse(hospitals []models.NearbyHospital) []nearbyHospitalResponse {
	out := make([]nearbyHospitalResponse, 0, len(hospitals))
	for _, h := range hospitals {
		out = append(out, nearbyHospitalResponse{
			ID:         h.ID,
			Name:       h.Name,
			Address:    h.Address,
			Phone:      h.Phone,
			Latitude:   h.Latitude,
			Longitude:  h.Longitude,
			DistanceKm: roundKm(h.DistanceKm),
		})
	}
	return out
}

// Nearby lists active hospitals around a point, nearest first
func (h *HospitalHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLon != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}
	if !geo.ValidCoordinates(lat, lon) {
		utils.AppErrorResponse(c, apperror.Validation("invalid coordinates"))
		return
	}

	radius := float64(defaultNearbyRadiusKm)
	if v := c.Query("radius"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid radius")
			return
		}
		radius = r
	}

	limit := defaultNearbyLimit
	if v := c.Query("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = l
	}
	if limit > maxNearbyLimit {
		limit = maxNearbyLimit
	}

	hospitals, err := h.hospitalService.FindNearby(c.Request.Context(), lat, lon, radius, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": newNearbyResponse(hospitals),
		"count":     len(hospitals),
		"radiusKm":  radius,
	})
}

// GetAllHospitals lists active hospitals
func (h *HospitalHandler) GetAllHospitals(c *gin.Context) {
	hospitals, err := h.hospitalService.ListHospitals(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// GetHospital retrieves a specific hospital by ID
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	hospital, err := h.hospitalService.GetHospital(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, hospital)
}

// CreateHospital creates a new hospital (admin only)
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var in service.HospitalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hospital, err := h.hospitalService.CreateHospital(c.Request.Context(), in, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, hospital)
}

// UpdateHospital updates an existing hospital (admin only)
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var in service.HospitalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hospital, err := h.hospitalService.UpdateHospital(c.Request.Context(), c.Param("id"), in, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, hospital)
}

// DeleteHospital deactivates a hospital (admin only)
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.hospitalService.DeleteHospital(c.Request.Context(), c.Param("id"), userID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.MessageResponse(c, "Hospital deactivated successfully")
}

// AssignStaff links a staff user to a hospital (admin only)
func (h *HospitalHandler) AssignStaff(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.hospitalService.AssignStaff(c.Request.Context(), c.Param("id"), req.UserID, adminID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.MessageResponse(c, "Staff assigned successfully")
}
