package models

import "time"

// Hospital represents an emergency-capable facility that can receive cardiac alerts
type Hospital struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Address        string    `gorm:"type:text;not null" json:"address"`
	Phone          string    `gorm:"size:50;not null" json:"phone"`
	EmergencyEmail *string   `gorm:"size:255" json:"emergency_email,omitempty"`
	Latitude       float64   `gorm:"not null" json:"latitude"`
	Longitude      float64   `gorm:"not null" json:"longitude"`
	FCMTopic       string    `gorm:"column:fcm_topic;size:255" json:"-"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

// Channel returns the notification channel the hospital listens on
func (h *Hospital) Channel() string {
	if h.FCMTopic != "" {
		return h.FCMTopic
	}
	return "hospital_" + h.ID
}

// NearbyHospital pairs a hospital with its distance from a query point
type NearbyHospital struct {
	Hospital
	DistanceKm float64 `json:"distance_km"`
}
