package service

import (
	"context"
	"time"

	"cardioalert/internal/metrics"
	"cardioalert/internal/repository"
	"cardioalert/pkg/logger"

	"go.uber.org/zap"
)

// WorkerService cleans up dispatch claims left behind by a crashed or stuck dispatch.
// A claim whose fan-out never started is released so the payer can retry; one whose
// fan-out started is finalized as sent, since hospitals were already paged.
type WorkerService struct {
	alertRepo *repository.AlertRepository
	claimTTL  time.Duration
	interval  time.Duration
}

func NewWorkerService(alertRepo *repository.AlertRepository, claimTTL, interval time.Duration) *WorkerService {
	return &WorkerService{
		alertRepo: alertRepo,
		claimTTL:  claimTTL,
		interval:  interval,
	}
}

// Start runs the reaper until ctx is cancelled
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Dispatch claim reaper started", zap.Duration("interval", w.interval), zap.Duration("claim_ttl", w.claimTTL))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Dispatch claim reaper stopped")
			return
		case <-ticker.C:
			if _, err := w.ReleaseStaleClaims(ctx); err != nil {
				logger.Error("Error releasing stale dispatch claims", zap.Error(err))
			}
			if _, err := w.FinalizeStaleDispatches(ctx); err != nil {
				logger.Error("Error finalizing stale dispatches", zap.Error(err))
			}
		}
	}
}

// ReleaseStaleClaims clears claims older than the claim TTL and returns how many it cleared
func (w *WorkerService) ReleaseStaleClaims(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-w.claimTTL)
	released, err := w.alertRepo.ReleaseStaleClaims(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if released > 0 {
		metrics.StaleClaimsReleased.Add(float64(released))
		logger.Warn("Released stale dispatch claims", zap.Int64("count", released))
	}
	return released, nil
}

// FinalizeStaleDispatches marks sent the alerts whose dispatch died after fan-out began
func (w *WorkerService) FinalizeStaleDispatches(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-w.claimTTL)
	finalized, err := w.alertRepo.FinalizeStaleDispatches(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if finalized > 0 {
		metrics.StaleDispatchesFinalized.Add(float64(finalized))
		logger.Warn("Finalized stale dispatches", zap.Int64("count", finalized))
	}
	return finalized, nil
}
