package models

import "time"

// Roles a user can hold
const (
	RoleUser  = "user"
	RoleStaff = "hospital_staff"
	RoleAdmin = "admin"
)

// User represents the users table
type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"size:100;not null" json:"name"`
	Email              string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash       string     `gorm:"not null;size:255" json:"-"`
	Role               string     `gorm:"size:20;not null;default:user" json:"role"`
	FCMToken           *string    `gorm:"column:fcm_token;size:512" json:"-"`
	LastLatitude       *float64   `json:"last_latitude,omitempty"`
	LastLongitude      *float64   `json:"last_longitude,omitempty"`
	LastLocationUpdate *time.Time `json:"last_location_update,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	TokenHash string    `gorm:"not null;size:255;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
