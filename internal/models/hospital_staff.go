package models

import "time"

// HospitalStaff links a staff user to the hospital whose alerts they may acknowledge
type HospitalStaff struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_staff_user_hospital" json:"user_id"`
	HospitalID string    `gorm:"size:64;not null;uniqueIndex:idx_staff_user_hospital" json:"hospital_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for HospitalStaff model
func (HospitalStaff) TableName() string {
	return "hospital_staff"
}
