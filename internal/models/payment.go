package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// PaymentStatus is set once by verification; both outcomes are terminal
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Valid reports whether s is a known status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// Final reports whether no further status change is allowed
func (s PaymentStatus) Final() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

func (s PaymentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid payment status %q", string(s))
	}
	return string(s), nil
}

func (s *PaymentStatus) Scan(src any) error {
	var v string
	switch t := src.(type) {
	case string:
		v = t
	case []byte:
		v = string(t)
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", src)
	}
	if !PaymentStatus(v).Valid() {
		return fmt.Errorf("invalid payment status %q", v)
	}
	*s = PaymentStatus(v)
	return nil
}

// Payment is the processor order backing an alert. AmountMinor is in minor currency units.
type Payment struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	AlertID     string        `gorm:"size:36;not null;uniqueIndex" json:"alert_id"`
	OrderID     string        `gorm:"column:order_id;size:64;not null;uniqueIndex" json:"order_id"`
	PaymentRef  *string       `gorm:"column:payment_ref;size:64" json:"payment_ref,omitempty"`
	AmountMinor int64         `gorm:"column:amount_minor;not null" json:"amount_minor"`
	Currency    string        `gorm:"size:8;not null;default:INR" json:"currency"`
	Simulated   bool          `gorm:"not null;default:false" json:"simulated"`
	Status      PaymentStatus `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName specifies the table name for Payment model
func (Payment) TableName() string {
	return "payments"
}
