package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/satstacker/satstacker.go/db/models"
)

// StartZapSweepRoutine periodically reconciles pending zaps: it settles
// the ones whose payment has meanwhile been confirmed and expires the
// ones whose invoice window has passed. Transient failures are retried
// with exponential backoff inside a tick.
func (svc *SatstackerService) StartZapSweepRoutine(ctx context.Context) error {
	interval := time.Duration(svc.Config.ZapSweepInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := backoff.Retry(func() error {
				return svc.sweepPendingZaps(ctx)
			}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx))
			if err != nil && ctx.Err() == nil {
				svc.Logger.Errorf("Zap sweep failed: %v", err)
			}
		}
	}
}

func (svc *SatstackerService) sweepPendingZaps(ctx context.Context) error {
	pending, err := svc.PendingZaps(ctx)
	if err != nil {
		return err
	}
	for i := range pending {
		zap := &pending[i]
		if zap.RHash == "" {
			continue
		}
		if settled := svc.trySettle(ctx, zap); settled {
			continue
		}
	}

	expired, err := svc.ExpireStaleZaps(ctx)
	if err != nil {
		return err
	}
	if expired > 0 {
		svc.Logger.Infof("Expired %d stale pending zaps", expired)
	}
	return nil
}

func (svc *SatstackerService) trySettle(ctx context.Context, zap *models.Zap) bool {
	result, err := svc.CheckSettlement(ctx, zap.RHash, zap.PaymentRequest)
	if err != nil || !result.Settled {
		return false
	}
	applied, err := svc.SettleZap(ctx, zap)
	if err != nil {
		svc.Logger.Errorf("Failed to settle swept zap_id:%s error:%v", zap.ID, err)
		return false
	}
	return applied
}
