package repository

import (
	"context"

	"cardioalert/internal/models"

	"gorm.io/gorm"
)

type HospitalStaffRepository struct {
	db *gorm.DB
}

func NewHospitalStaffRepo(db *gorm.DB) *HospitalStaffRepository {
	return &HospitalStaffRepository{db: db}
}

// Assign links a staff user to a hospital
func (r *HospitalStaffRepository) Assign(ctx context.Context, userID uint, hospitalID string) error {
	staff := &models.HospitalStaff{
		UserID:     userID,
		HospitalID: hospitalID,
	}
	// Use FirstOrCreate to avoid duplicate entries
	return r.db.WithContext(ctx).Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		FirstOrCreate(staff).Error
}

// Remove unlinks a staff user from a hospital
func (r *HospitalStaffRepository) Remove(ctx context.Context, userID uint, hospitalID string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		Delete(&models.HospitalStaff{}).Error
}

// HospitalsForUser retrieves the hospital IDs a staff user works for
func (r *HospitalStaffRepository) HospitalsForUser(ctx context.Context, userID uint) ([]string, error) {
	var hospitalIDs []string
	err := r.db.WithContext(ctx).Model(&models.HospitalStaff{}).
		Where("user_id = ?", userID).
		Order("hospital_id ASC").
		Pluck("hospital_id", &hospitalIDs).Error
	return hospitalIDs, err
}

// IsStaff checks if a user is staff of a specific hospital
func (r *HospitalStaffRepository) IsStaff(ctx context.Context, userID uint, hospitalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HospitalStaff{}).
		Where("user_id = ? AND hospital_id = ?", userID, hospitalID).
		Count(&count).Error
	return count > 0, err
}
