package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardioalert/internal/apperror"
	"cardioalert/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// CreateWithPayment inserts an alert and its payment record in one transaction
func (r *AlertRepository) CreateWithPayment(ctx context.Context, alert *models.Alert, payment *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(alert).Error; err != nil {
			return err
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an alert by ID
func (r *AlertRepository) FindByID(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("alert", id)
		}
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	return &alert, nil
}

// FindByUserID retrieves a user's alerts, newest first
func (r *AlertRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// TransitionStatus moves an alert from one status to the next.
// Returns false when the alert was not in the expected status.
func (r *AlertRepository) TransitionStatus(ctx context.Context, id string, from, to models.AlertStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClaimDispatch marks a payment-verified alert as being dispatched.
// Only one caller can win the claim.
func (r *AlertRepository) ClaimDispatch(ctx context.Context, id string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("id = ? AND status = ? AND dispatch_started_at IS NULL", id, models.AlertPaymentVerified).
		Update("dispatch_started_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// hasLinks matches alerts whose fan-out has already started
const hasLinks = "EXISTS (SELECT 1 FROM alert_hospitals WHERE alert_hospitals.alert_id = alerts.id)"

// ReleaseDispatch clears a dispatch claim on an alert that was not sent.
// A claim is kept once hospital links exist, so hospitals are never paged twice.
func (r *AlertRepository) ReleaseDispatch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("id = ? AND status = ?", id, models.AlertPaymentVerified).
		Where("NOT " + hasLinks).
		Update("dispatch_started_at", nil).Error
}

// ReleaseStaleClaims clears dispatch claims older than cutoff on alerts that never
// reached sent and never got as far as linking hospitals
func (r *AlertRepository) ReleaseStaleClaims(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("status = ? AND dispatch_started_at IS NOT NULL AND dispatch_started_at < ?", models.AlertPaymentVerified, cutoff).
		Where("NOT " + hasLinks).
		Update("dispatch_started_at", nil)
	return res.RowsAffected, res.Error
}

// FinalizeStaleDispatches moves to sent the alerts whose claim is older than cutoff
// and whose fan-out started, i.e. the dispatch died after linking hospitals
func (r *AlertRepository) FinalizeStaleDispatches(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("status = ? AND dispatch_started_at IS NOT NULL AND dispatch_started_at < ?", models.AlertPaymentVerified, cutoff).
		Where(hasLinks).
		Update("status", models.AlertSent)
	return res.RowsAffected, res.Error
}

// CreateLinks inserts alert/hospital links, skipping pairs that already exist
func (r *AlertRepository) CreateLinks(ctx context.Context, links []models.AlertHospital) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "alert_id"}, {Name: "hospital_id"}},
			DoNothing: true,
		}).
		Create(&links).Error
}

// MarkNotificationSent flips notification_sent to true once
func (r *AlertRepository) MarkNotificationSent(ctx context.Context, alertID, hospitalID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.AlertHospital{}).
		Where("alert_id = ? AND hospital_id = ? AND notification_sent = ?", alertID, hospitalID, false).
		Updates(map[string]any{"notification_sent": true, "sent_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Acknowledge flips acknowledged to true once
func (r *AlertRepository) Acknowledge(ctx context.Context, alertID, hospitalID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.AlertHospital{}).
		Where("alert_id = ? AND hospital_id = ? AND acknowledged = ?", alertID, hospitalID, false).
		Updates(map[string]any{"acknowledged": true, "acknowledged_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindLink retrieves the link for one (alert, hospital) pair
func (r *AlertRepository) FindLink(ctx context.Context, alertID, hospitalID string) (*models.AlertHospital, error) {
	var link models.AlertHospital
	err := r.db.WithContext(ctx).Where("alert_id = ? AND hospital_id = ?", alertID, hospitalID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("alert hospital link", alertID+"/"+hospitalID)
		}
		return nil, fmt.Errorf("failed to load alert hospital link: %w", err)
	}
	return &link, nil
}

// FindLinks retrieves all links of an alert joined with hospital contact fields
func (r *AlertRepository) FindLinks(ctx context.Context, alertID string) ([]models.AlertHospitalDetail, error) {
	var links []models.AlertHospitalDetail
	err := r.db.WithContext(ctx).
		Table("alert_hospitals").
		Select("alert_hospitals.*, hospitals.name AS hospital_name, hospitals.phone AS hospital_phone").
		Joins("INNER JOIN hospitals ON hospitals.id = alert_hospitals.hospital_id").
		Where("alert_hospitals.alert_id = ?", alertID).
		Order("alert_hospitals.hospital_id ASC").
		Scan(&links).Error
	return links, err
}
