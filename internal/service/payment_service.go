package service

import (
	"context"
	"fmt"
	"strconv"

	"cardioalert/internal/apperror"
	"cardioalert/internal/geo"
	"cardioalert/internal/metrics"
	"cardioalert/internal/models"
	"cardioalert/internal/payment"
	"cardioalert/internal/repository"
	"cardioalert/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	alertRepo   *repository.AlertRepository
	auditRepo   *repository.AuditRepository
	gateway     *payment.Gateway
	alerts      *AlertService
	directory   *HospitalService
	tiers       *TierPolicy
	radiusKm    float64
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	alertRepo *repository.AlertRepository,
	auditRepo *repository.AuditRepository,
	gateway *payment.Gateway,
	alerts *AlertService,
	directory *HospitalService,
	tiers *TierPolicy,
	radiusKm float64,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		alertRepo:   alertRepo,
		auditRepo:   auditRepo,
		gateway:     gateway,
		alerts:      alerts,
		directory:   directory,
		tiers:       tiers,
		radiusKm:    radiusKm,
	}
}

// CreateOrderInput is a payer's request for an alert order
type CreateOrderInput struct {
	Tier      int
	Latitude  float64
	Longitude float64
	Symptoms  string
	Message   string
}

// OrderResult is a created order with the hospitals it would reach right now
type OrderResult struct {
	Alert     *models.Alert
	Payment   *models.Payment
	Order     *payment.Order
	Tier      Tier
	Hospitals []models.NearbyHospital
	KeyID     string
}

// CreateOrder prices the tier, previews recipients, opens a processor order and
// stores the pending alert with its payment. Nothing is stored if the processor fails.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uint, in CreateOrderInput) (*OrderResult, error) {
	if !ValidTier(in.Tier) {
		return nil, apperror.Validation("invalid tier, must be 1, 2, or 3")
	}
	if !geo.ValidCoordinates(in.Latitude, in.Longitude) {
		return nil, apperror.Validation("invalid coordinates")
	}

	tier := s.tiers.Lookup(in.Tier)
	preview, err := s.directory.FindNearby(ctx, in.Latitude, in.Longitude, s.radiusKm, tier.HospitalCount)
	if err != nil {
		return nil, apperror.Internal("failed to resolve hospitals", err)
	}

	alert := s.alerts.NewAlert(userID, in.Tier, in.Latitude, in.Longitude, in.Symptoms, in.Message)

	order, err := s.gateway.CreateOrder(ctx, tier.PriceMinor, alert.ID, map[string]string{
		"tier":   strconv.Itoa(tier.Level),
		"userId": strconv.FormatUint(uint64(userID), 10),
	})
	if err != nil {
		return nil, err
	}

	currency := order.Currency
	if currency == "" {
		currency = s.gateway.Currency()
	}
	record := &models.Payment{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		AmountMinor: tier.PriceMinor,
		Currency:    currency,
		Simulated:   order.Simulated,
		Status:      models.PaymentPending,
	}
	if err := s.alerts.Create(ctx, alert, record); err != nil {
		return nil, err
	}

	mode := "live"
	if order.Simulated {
		mode = "simulated"
	}
	metrics.OrdersCreated.WithLabelValues(mode).Inc()

	details := fmt.Sprintf("Order %s created for alert %s (tier %d, amount %d)", order.ID, alert.ID, tier.Level, tier.PriceMinor)
	_ = s.auditRepo.CreateAuditLog(ctx, &userID, models.AuditOrderCreated, details)

	return &OrderResult{
		Alert:     alert,
		Payment:   record,
		Order:     order,
		Tier:      tier,
		Hospitals: preview,
		KeyID:     s.gateway.KeyID(),
	}, nil
}

// VerifyInput is the payer's proof of payment
type VerifyInput struct {
	AlertID   string
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyResult describes an accepted payment
type VerifyResult struct {
	AlertID   string
	PaymentID string
	Simulated bool
	Duplicate bool
}

// Verify checks the payment signature, completes the payment and advances the alert.
// Repeating a successful verification with the same payment id succeeds without side effects.
func (s *PaymentService) Verify(ctx context.Context, userID uint, in VerifyInput) (*VerifyResult, error) {
	record, err := s.paymentRepo.FindByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if record.AlertID != in.AlertID {
		return nil, apperror.Validation("order does not belong to this alert")
	}

	alert, err := s.alertRepo.FindByID(ctx, in.AlertID)
	if err != nil {
		return nil, err
	}
	if alert.UserID != userID {
		return nil, apperror.Forbidden("alert belongs to another user")
	}

	if record.Status.Final() {
		return s.alreadyFinal(ctx, record, alert, in.PaymentID)
	}

	verification := s.gateway.Verify(in.OrderID, in.PaymentID, in.Signature)
	metrics.PaymentVerifications.WithLabelValues(verification.String()).Inc()

	if !verification.OK() {
		if _, err := s.paymentRepo.Fail(ctx, record.ID); err != nil {
			return nil, apperror.Internal("failed to mark payment failed", err)
		}
		details := fmt.Sprintf("Payment %s rejected for order %s", in.PaymentID, in.OrderID)
		_ = s.auditRepo.CreateAuditLog(ctx, &userID, models.AuditPaymentRejected, details)
		return nil, apperror.VerificationFailed("payment verification failed")
	}

	completed, err := s.paymentRepo.Complete(ctx, record.ID, in.PaymentID)
	if err != nil {
		return nil, apperror.Internal("failed to complete payment", err)
	}
	if !completed {
		// a concurrent verification settled the payment first
		latest, err := s.paymentRepo.FindByOrderID(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		return s.alreadyFinal(ctx, latest, alert, in.PaymentID)
	}

	if err := s.advanceAlert(ctx, alert.ID); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Payment %s verified for order %s (%s)", in.PaymentID, in.OrderID, verification)
	_ = s.auditRepo.CreateAuditLog(ctx, &userID, models.AuditPaymentVerified, details)
	logger.Info("Payment verified",
		zap.String("alert_id", alert.ID),
		zap.String("order_id", in.OrderID),
		zap.Bool("simulated", verification == payment.VerifiedSimulated),
	)

	return &VerifyResult{
		AlertID:   alert.ID,
		PaymentID: in.PaymentID,
		Simulated: verification == payment.VerifiedSimulated,
	}, nil
}

func (s *PaymentService) alreadyFinal(ctx context.Context, record *models.Payment, alert *models.Alert, paymentID string) (*VerifyResult, error) {
	if record.Status == models.PaymentCompleted && record.PaymentRef != nil && *record.PaymentRef == paymentID {
		if err := s.advanceAlert(ctx, alert.ID); err != nil {
			return nil, err
		}
		return &VerifyResult{
			AlertID:   alert.ID,
			PaymentID: paymentID,
			Simulated: record.Simulated,
			Duplicate: true,
		}, nil
	}

	finalized := apperror.Conflict(fmt.Sprintf("payment already %s", record.Status))
	finalized.Reason = apperror.ReasonPaymentFinalized
	return nil, finalized.WithDetail("paymentStatus", string(record.Status))
}

// advanceAlert moves the alert to payment_verified unless it is already there or beyond
func (s *PaymentService) advanceAlert(ctx context.Context, alertID string) error {
	err := s.alerts.MarkPaymentVerified(ctx, alertID)
	if err == nil || apperror.HasReason(err, apperror.ReasonInvalidTransition) {
		return nil
	}
	return err
}

// PaymentSummary is one line of a payer's payment history
type PaymentSummary struct {
	Alert   models.Alert
	Payment *models.Payment
}

// History lists the caller's alerts with their payments, newest first
func (s *PaymentService) History(ctx context.Context, userID uint) ([]PaymentSummary, error) {
	alerts, err := s.alertRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load alerts", err)
	}

	history := make([]PaymentSummary, 0, len(alerts))
	for _, a := range alerts {
		p, err := s.paymentRepo.FindByAlertID(ctx, a.ID)
		if err != nil {
			return nil, apperror.Internal("failed to load payment", err)
		}
		history = append(history, PaymentSummary{Alert: a, Payment: p})
	}
	return history, nil
}
