package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// AlertStatus is the lifecycle state of an alert. Transitions only move forward:
// pending -> payment_verified -> sent.
type AlertStatus string

const (
	AlertPending         AlertStatus = "pending"
	AlertPaymentVerified AlertStatus = "payment_verified"
	AlertSent            AlertStatus = "sent"
)

var alertStatusRank = map[AlertStatus]int{
	AlertPending:         0,
	AlertPaymentVerified: 1,
	AlertSent:            2,
}

// Valid reports whether s is a known status
func (s AlertStatus) Valid() bool {
	_, ok := alertStatusRank[s]
	return ok
}

// CanTransitionTo reports whether next is the immediate successor of s
func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	from, ok1 := alertStatusRank[s]
	to, ok2 := alertStatusRank[next]
	return ok1 && ok2 && to == from+1
}

func (s AlertStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid alert status %q", string(s))
	}
	return string(s), nil
}

func (s *AlertStatus) Scan(src any) error {
	var v string
	switch t := src.(type) {
	case string:
		v = t
	case []byte:
		v = string(t)
	default:
		return fmt.Errorf("cannot scan %T into AlertStatus", src)
	}
	if !AlertStatus(v).Valid() {
		return fmt.Errorf("invalid alert status %q", v)
	}
	*s = AlertStatus(v)
	return nil
}

// Alert represents one paid emergency request from a user
type Alert struct {
	ID                string      `gorm:"primaryKey;size:36" json:"id"`
	UserID            uint        `gorm:"not null;index" json:"user_id"`
	Symptoms          string      `gorm:"type:text" json:"symptoms"`
	Message           string      `gorm:"type:text" json:"message"`
	Tier              int         `gorm:"column:charge_tier;not null" json:"tier"`
	Latitude          float64     `gorm:"column:user_latitude;not null" json:"latitude"`
	Longitude         float64     `gorm:"column:user_longitude;not null" json:"longitude"`
	Status            AlertStatus `gorm:"size:32;not null;default:pending;index" json:"status"`
	DispatchStartedAt *time.Time  `gorm:"column:dispatch_started_at" json:"-"`
	CreatedAt         time.Time   `json:"created_at"`
}

// TableName specifies the table name for Alert model
func (Alert) TableName() string {
	return "alerts"
}

// AlertHospital tracks notification and acknowledgment for one (alert, hospital) pair
type AlertHospital struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	AlertID          string     `gorm:"size:36;not null;uniqueIndex:idx_alert_hospital" json:"alert_id"`
	HospitalID       string     `gorm:"size:64;not null;uniqueIndex:idx_alert_hospital" json:"hospital_id"`
	NotificationSent bool       `gorm:"not null;default:false" json:"notification_sent"`
	SentAt           *time.Time `json:"sent_at"`
	Acknowledged     bool       `gorm:"not null;default:false" json:"acknowledged"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at"`
}

// TableName specifies the table name for AlertHospital model
func (AlertHospital) TableName() string {
	return "alert_hospitals"
}

// AlertHospitalDetail is a link row joined with hospital contact fields
type AlertHospitalDetail struct {
	AlertHospital
	HospitalName  string `json:"hospital_name"`
	HospitalPhone string `json:"hospital_phone"`
}
