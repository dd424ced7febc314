package repository

import (
	"context"
	"errors"
	"fmt"

	"cardioalert/internal/apperror"
	"cardioalert/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByOrderID retrieves a payment by the processor order reference
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("payment", orderID)
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

// FindByAlertID retrieves the payment of an alert; nil when there is none
func (r *PaymentRepository) FindByAlertID(ctx context.Context, alertID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("alert_id = ?", alertID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// Complete sets the payment reference and completed status on a pending payment.
// Returns false when the payment was no longer pending.
func (r *PaymentRepository) Complete(ctx context.Context, id, paymentRef string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Updates(map[string]any{"status": models.PaymentCompleted, "payment_ref": paymentRef})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Fail marks a pending payment failed. Returns false when it was no longer pending.
func (r *PaymentRepository) Fail(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Update("status", models.PaymentFailed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
