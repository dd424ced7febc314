package models

import "time"

// Audit actions written by the services
const (
	AuditOrderCreated      = "order_created"
	AuditPaymentVerified   = "payment_verified"
	AuditPaymentRejected   = "payment_rejected"
	AuditAlertDispatched   = "alert_dispatched"
	AuditAlertAcknowledged = "alert_acknowledged"
	AuditHospitalCreate    = "hospital_create"
	AuditHospitalUpdate    = "hospital_update"
	AuditHospitalDelete    = "hospital_delete"
	AuditStaffAssign       = "hospital_staff_assign"
	AuditUserLogin         = "user_login"
	AuditUserRegistration  = "user_registration"
)

// AuditLog represents the audit_logs table
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Action    string    `gorm:"size:100;not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
