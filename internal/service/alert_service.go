package service

import (
	"context"
	"fmt"
	"time"

	"cardioalert/internal/apperror"
	"cardioalert/internal/lock"
	"cardioalert/internal/metrics"
	"cardioalert/internal/models"
	"cardioalert/internal/repository"
	"cardioalert/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertService owns the alert state machine (pending -> payment_verified -> sent),
// the per-hospital links, and the dispatch of paid alerts.
type AlertService struct {
	alertRepo   *repository.AlertRepository
	paymentRepo *repository.PaymentRepository
	auditRepo   *repository.AuditRepository
	directory   *HospitalService
	tiers       *TierPolicy
	fanout      *DispatchService
	locker      lock.Locker
	radiusKm    float64
	lockTTL     time.Duration
	now         func() time.Time
}

func NewAlertService(
	alertRepo *repository.AlertRepository,
	paymentRepo *repository.PaymentRepository,
	auditRepo *repository.AuditRepository,
	directory *HospitalService,
	tiers *TierPolicy,
	fanout *DispatchService,
	locker lock.Locker,
	radiusKm float64,
	lockTTL time.Duration,
) *AlertService {
	return &AlertService{
		alertRepo:   alertRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		directory:   directory,
		tiers:       tiers,
		fanout:      fanout,
		locker:      locker,
		radiusKm:    radiusKm,
		lockTTL:     lockTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewAlert builds a pending alert. The tier is stored as given; an out-of-range
// tier is priced as tier 1 downstream.
func (s *AlertService) NewAlert(userID uint, tier int, lat, lon float64, symptoms, message string) *models.Alert {
	return &models.Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Symptoms:  symptoms,
		Message:   message,
		Tier:      tier,
		Latitude:  lat,
		Longitude: lon,
		Status:    models.AlertPending,
	}
}

// Create persists a pending alert together with its payment record
func (s *AlertService) Create(ctx context.Context, alert *models.Alert, payment *models.Payment) error {
	if alert.Status != models.AlertPending {
		return apperror.Precondition(apperror.ReasonInvalidTransition, "alerts are created pending")
	}
	payment.AlertID = alert.ID
	if err := s.alertRepo.CreateWithPayment(ctx, alert, payment); err != nil {
		return apperror.Internal("failed to create alert", err)
	}
	return nil
}

// MarkPaymentVerified moves a pending alert to payment_verified
func (s *AlertService) MarkPaymentVerified(ctx context.Context, alertID string) error {
	return s.transition(ctx, alertID, models.AlertPending, models.AlertPaymentVerified)
}

// FinalizeSent moves a payment_verified alert to sent, whatever the individual send outcomes were
func (s *AlertService) FinalizeSent(ctx context.Context, alertID string) error {
	return s.transition(ctx, alertID, models.AlertPaymentVerified, models.AlertSent)
}

func (s *AlertService) transition(ctx context.Context, alertID string, from, to models.AlertStatus) error {
	if !from.CanTransitionTo(to) {
		return apperror.Precondition(apperror.ReasonInvalidTransition,
			fmt.Sprintf("alert cannot move from %s to %s", from, to))
	}

	ok, err := s.alertRepo.TransitionStatus(ctx, alertID, from, to)
	if err != nil {
		return apperror.Internal("failed to update alert status", err)
	}
	if ok {
		return nil
	}

	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return err
	}
	return apperror.Precondition(apperror.ReasonInvalidTransition,
		fmt.Sprintf("alert is %s, expected %s", alert.Status, from)).
		WithDetail("status", string(alert.Status))
}

// GuardDispatch loads the alert and rejects dispatch unless its payment is completed
// and it has not been sent yet. The payment record decides, not the alert status.
func (s *AlertService) GuardDispatch(ctx context.Context, alertID string) (*models.Alert, error) {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.FindByAlertID(ctx, alertID)
	if err != nil {
		return nil, apperror.Internal("failed to load payment", err)
	}
	if payment == nil || payment.Status != models.PaymentCompleted {
		status := "not found"
		if payment != nil {
			status = string(payment.Status)
		}
		return nil, apperror.Precondition(apperror.ReasonPaymentIncomplete, "payment not completed, complete payment first").
			WithDetail("paymentStatus", status)
	}

	if alert.Status == models.AlertSent {
		return nil, apperror.Precondition(apperror.ReasonAlreadySent, "alert already sent")
	}
	return alert, nil
}

// RecordHospitalLinks creates one link per hospital, skipping pairs that already exist
func (s *AlertService) RecordHospitalLinks(ctx context.Context, alertID string, hospitalIDs []string) error {
	links := make([]models.AlertHospital, 0, len(hospitalIDs))
	for _, id := range hospitalIDs {
		links = append(links, models.AlertHospital{
			ID:         uuid.NewString(),
			AlertID:    alertID,
			HospitalID: id,
		})
	}
	if err := s.alertRepo.CreateLinks(ctx, links); err != nil {
		return apperror.Internal("failed to record hospital links", err)
	}
	return nil
}

// RecordNotificationOutcome marks the link sent on success. Failures leave the link untouched.
func (s *AlertService) RecordNotificationOutcome(ctx context.Context, alertID, hospitalID string, success bool, at time.Time) error {
	if !success {
		return nil
	}
	if _, err := s.alertRepo.MarkNotificationSent(ctx, alertID, hospitalID, at); err != nil {
		return apperror.Internal("failed to record notification", err)
	}
	return nil
}

// Acknowledge marks the hospital's link acknowledged, once. It does not depend on alert status.
func (s *AlertService) Acknowledge(ctx context.Context, alertID, hospitalID string, actorID uint) (*models.AlertHospital, error) {
	link, err := s.alertRepo.FindLink(ctx, alertID, hospitalID)
	if err != nil {
		return nil, err
	}
	if link.Acknowledged {
		return link, nil
	}

	changed, err := s.alertRepo.Acknowledge(ctx, alertID, hospitalID, s.now())
	if err != nil {
		return nil, apperror.Internal("failed to acknowledge alert", err)
	}
	if changed {
		details := fmt.Sprintf("Hospital %s acknowledged alert %s", hospitalID, alertID)
		_ = s.auditRepo.CreateAuditLog(ctx, &actorID, models.AuditAlertAcknowledged, details)
		logger.Info("Alert acknowledged", zap.String("alert_id", alertID), zap.String("hospital_id", hospitalID))
	}

	return s.alertRepo.FindLink(ctx, alertID, hospitalID)
}

// DispatchReport is the result of a completed dispatch
type DispatchReport struct {
	AlertID string
	Results []PerHospitalResult
}

// Dispatch resolves recipients for a paid alert and notifies them. At most one
// dispatch per alert runs at a time: a per-alert lock plus a claim column written
// with a conditional update.
func (s *AlertService) Dispatch(ctx context.Context, userID uint, alertID string) (*DispatchReport, error) {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.UserID != userID {
		return nil, apperror.Forbidden("alert belongs to another user")
	}

	unlock, ok, err := s.locker.TryLock(ctx, "dispatch:"+alertID, s.lockTTL)
	if err != nil {
		return nil, apperror.Unavailable("dispatch lock", err)
	}
	if !ok {
		metrics.Dispatches.WithLabelValues("in_progress").Inc()
		return nil, apperror.Precondition(apperror.ReasonDispatchInProgress, "dispatch already in progress for this alert")
	}
	defer unlock()

	alert, err = s.GuardDispatch(ctx, alertID)
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Reason != "" {
			metrics.Dispatches.WithLabelValues(string(appErr.Reason)).Inc()
		}
		return nil, err
	}

	// payment completed but the alert never left pending
	if alert.Status == models.AlertPending {
		if err := s.MarkPaymentVerified(ctx, alertID); err != nil && !apperror.HasReason(err, apperror.ReasonInvalidTransition) {
			return nil, err
		}
		logger.Warn("Repaired alert left pending after payment completion", zap.String("alert_id", alertID))
	}

	claimed, err := s.alertRepo.ClaimDispatch(ctx, alertID, s.now())
	if err != nil {
		return nil, apperror.Internal("failed to claim dispatch", err)
	}
	if !claimed {
		metrics.Dispatches.WithLabelValues("in_progress").Inc()
		return nil, apperror.Precondition(apperror.ReasonDispatchInProgress, "dispatch already in progress for this alert")
	}

	// once claimed, finish even if the caller goes away
	workCtx := context.WithoutCancel(ctx)
	start := time.Now()

	tier := s.tiers.Lookup(alert.Tier)
	hospitals, err := s.directory.FindNearby(workCtx, alert.Latitude, alert.Longitude, s.radiusKm, tier.HospitalCount)
	if err != nil {
		s.releaseClaim(workCtx, alertID)
		return nil, apperror.Internal("failed to resolve hospitals", err)
	}
	if len(hospitals) == 0 {
		s.releaseClaim(workCtx, alertID)
		metrics.Dispatches.WithLabelValues(string(apperror.ReasonNoHospitalsFound)).Inc()
		return nil, apperror.Precondition(apperror.ReasonNoHospitalsFound, "no hospitals found nearby").
			WithDetail("radiusKm", s.radiusKm)
	}

	hospitalIDs := make([]string, len(hospitals))
	for i, h := range hospitals {
		hospitalIDs[i] = h.ID
	}
	if err := s.RecordHospitalLinks(workCtx, alertID, hospitalIDs); err != nil {
		s.releaseClaim(workCtx, alertID)
		return nil, err
	}

	results := s.fanout.SendAll(workCtx, hospitals, AlertPayload{
		AlertID:   alert.ID,
		Symptoms:  alert.Symptoms,
		Latitude:  alert.Latitude,
		Longitude: alert.Longitude,
	})

	delivered := 0
	for _, r := range results {
		if r.Success() {
			delivered++
		}
		if err := s.RecordNotificationOutcome(workCtx, alertID, r.HospitalID, r.Success(), s.now()); err != nil {
			logger.Error("Failed to record notification outcome",
				zap.String("alert_id", alertID),
				zap.String("hospital_id", r.HospitalID),
				zap.Error(err),
			)
		}
	}

	if err := s.FinalizeSent(workCtx, alertID); err != nil {
		logger.Error("Failed to finalize alert", zap.String("alert_id", alertID), zap.Error(err))
		return nil, err
	}

	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	metrics.Dispatches.WithLabelValues("sent").Inc()

	details := fmt.Sprintf("Alert %s dispatched to %d hospitals (%d accepted)", alertID, len(results), delivered)
	_ = s.auditRepo.CreateAuditLog(workCtx, &userID, models.AuditAlertDispatched, details)
	logger.Info("Alert dispatched",
		zap.String("alert_id", alertID),
		zap.Int("hospitals", len(results)),
		zap.Int("accepted", delivered),
	)

	return &DispatchReport{AlertID: alertID, Results: results}, nil
}

func (s *AlertService) releaseClaim(ctx context.Context, alertID string) {
	if err := s.alertRepo.ReleaseDispatch(ctx, alertID); err != nil {
		logger.Error("Failed to release dispatch claim", zap.String("alert_id", alertID), zap.Error(err))
	}
}

// AlertDetail is an alert with its payment and per-hospital state
type AlertDetail struct {
	Alert     models.Alert
	Payment   *models.Payment
	Hospitals []models.AlertHospitalDetail
}

// GetAlert returns one of the caller's alerts
func (s *AlertService) GetAlert(ctx context.Context, userID uint, alertID string) (*AlertDetail, error) {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.UserID != userID {
		return nil, apperror.Forbidden("alert belongs to another user")
	}
	return s.detail(ctx, alert)
}

// History returns the caller's alerts, newest first
func (s *AlertService) History(ctx context.Context, userID uint) ([]AlertDetail, error) {
	alerts, err := s.alertRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load alerts", err)
	}

	history := make([]AlertDetail, 0, len(alerts))
	for i := range alerts {
		d, err := s.detail(ctx, &alerts[i])
		if err != nil {
			return nil, err
		}
		history = append(history, *d)
	}
	return history, nil
}

func (s *AlertService) detail(ctx context.Context, alert *models.Alert) (*AlertDetail, error) {
	payment, err := s.paymentRepo.FindByAlertID(ctx, alert.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load payment", err)
	}
	links, err := s.alertRepo.FindLinks(ctx, alert.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load alert hospitals", err)
	}
	return &AlertDetail{Alert: *alert, Payment: payment, Hospitals: links}, nil
}
