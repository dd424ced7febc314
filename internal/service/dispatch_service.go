package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cardioalert/internal/metrics"
	"cardioalert/internal/models"
	"cardioalert/internal/notification"
	"cardioalert/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	alertTitle       = "🚨 CARDIAC EMERGENCY ALERT"
	alertPayloadType = "emergency_cardiac"
)

// Outcome is how a single hospital notification ended
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeDelivered
	OutcomeSimulated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeSimulated:
		return "simulated"
	}
	return "failed"
}

// PerHospitalResult is the outcome of notifying one hospital
type PerHospitalResult struct {
	HospitalID   string
	HospitalName string
	DistanceKm   float64
	Outcome      Outcome
	MessageID    string
	Err          error
}

// Success reports whether the notification was accepted, for real or simulated
func (r PerHospitalResult) Success() bool {
	return r.Outcome != OutcomeFailed
}

// Mock reports whether the notification never left the process
func (r PerHospitalResult) Mock() bool {
	return r.Outcome == OutcomeSimulated
}

// AlertPayload is the alert data carried in every hospital notification
type AlertPayload struct {
	AlertID   string
	Symptoms  string
	Latitude  float64
	Longitude float64
}

// DispatchService fans one alert out to a set of hospitals
type DispatchService struct {
	notifier    notification.Notifier
	sendTimeout time.Duration
	concurrency int
	now         func() time.Time
}

func NewDispatchService(notifier notification.Notifier, sendTimeout time.Duration, concurrency int) *DispatchService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DispatchService{
		notifier:    notifier,
		sendTimeout: sendTimeout,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// SendAll notifies every hospital once. A failure for one hospital never stops the
// others, and results[i] always belongs to hospitals[i].
func (d *DispatchService) SendAll(ctx context.Context, hospitals []models.NearbyHospital, payload AlertPayload) []PerHospitalResult {
	results := make([]PerHospitalResult, len(hospitals))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i := range hospitals {
		i := i
		g.Go(func() error {
			results[i] = d.send(ctx, &hospitals[i], payload)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *DispatchService) send(ctx context.Context, h *models.NearbyHospital, payload AlertPayload) (result PerHospitalResult) {
	result = PerHospitalResult{
		HospitalID:   h.ID,
		HospitalName: h.Name,
		DistanceKm:   h.DistanceKm,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("notifier panic: %v", r)
		}
		metrics.Notifications.WithLabelValues(result.Outcome.String()).Inc()
		if result.Err != nil {
			logger.Warn("Hospital notification failed",
				zap.String("alert_id", payload.AlertID),
				zap.String("hospital_id", h.ID),
				zap.Error(result.Err),
			)
		}
	}()

	sendCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	receipt, err := d.notifier.Send(sendCtx, d.BuildMessage(h, payload))
	switch {
	case err != nil:
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("notification timed out after %s: %w", d.sendTimeout, err)
		}
		result.Outcome = OutcomeFailed
		result.Err = err
	case receipt == nil:
		result.Outcome = OutcomeFailed
		result.Err = errors.New("notifier returned no receipt")
	case receipt.Simulated:
		result.Outcome = OutcomeSimulated
		result.MessageID = receipt.MessageID
	default:
		result.Outcome = OutcomeDelivered
		result.MessageID = receipt.MessageID
	}
	return result
}

// BuildMessage renders the push notification for one hospital
func (d *DispatchService) BuildMessage(h *models.NearbyHospital, payload AlertPayload) notification.Message {
	return notification.Message{
		Channel: h.Channel(),
		Title:   alertTitle,
		Body: fmt.Sprintf("Patient needs help! Location: %.4f, %.4f. Distance: %.2f km",
			payload.Latitude, payload.Longitude, h.DistanceKm),
		Data: map[string]string{
			"alertId":       payload.AlertID,
			"type":          alertPayloadType,
			"symptoms":      payload.Symptoms,
			"userLatitude":  strconv.FormatFloat(payload.Latitude, 'f', -1, 64),
			"userLongitude": strconv.FormatFloat(payload.Longitude, 'f', -1, 64),
			"timestamp":     d.now().UTC().Format(time.RFC3339),
		},
	}
}
