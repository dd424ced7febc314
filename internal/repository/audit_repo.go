package repository

import (
	"context"

	"cardioalert/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(ctx context.Context, userID *uint, action string, details string) error {
	entry := &models.AuditLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByAction lists audit entries for an action, newest first
func (r *AuditRepository) FindByAction(ctx context.Context, action string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.WithContext(ctx).Where("action = ?", action).Order("id DESC").Find(&entries).Error
	return entries, err
}
