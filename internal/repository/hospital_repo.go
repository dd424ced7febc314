package repository

import (
	"context"
	"errors"
	"fmt"

	"cardioalert/internal/apperror"
	"cardioalert/internal/models"

	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// FindActive retrieves all active hospitals ordered by id
func (r *HospitalRepository) FindActive(ctx context.Context) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&hospitals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

// FindByID retrieves an active hospital by ID
func (r *HospitalRepository) FindByID(ctx context.Context, id string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("hospital", id)
		}
		return nil, fmt.Errorf("failed to load hospital: %w", err)
	}
	return &hospital, nil
}

// Count returns the number of hospitals, active or not
func (r *HospitalRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Hospital{}).Count(&count).Error
	return count, err
}

// Exists reports whether a hospital with id is stored, active or not
func (r *HospitalRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Hospital{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create creates a new hospital
func (r *HospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Create(hospital).Error
}

// Update saves an existing hospital
func (r *HospitalRepository) Update(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Save(hospital).Error
}

// Deactivate soft deletes a hospital by setting is_active to false
func (r *HospitalRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Hospital{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate hospital: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("hospital", id)
	}
	return nil
}
