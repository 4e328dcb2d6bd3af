package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/satstacker/satstacker.go/common"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/uptrace/bun"
)

// RecordZap creates the ledger entry for a zap attempt. When a payment
// hash is supplied the settlement verifier is consulted, and a confirmed
// zap is settled immediately; otherwise the zap stays pending for the
// confirm endpoint or the sweep to pick up.
func (svc *SatstackerService) RecordZap(ctx context.Context, postId string, fromUserId string, amount int64, comment, rHash, paymentRequest string) (*models.Zap, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	post, err := svc.FindPost(ctx, postId)
	if err != nil {
		return nil, err
	}

	zap := &models.Zap{
		PostID:         postId,
		FromUserID:     fromUserId,
		ToUserID:       post.UserID,
		Amount:         amount,
		Comment:        comment,
		RHash:          rHash,
		PaymentRequest: paymentRequest,
		State:          common.ZapStatePending,
		ExpiresAt:      bun.NullTime{Time: time.Now().Add(time.Duration(svc.Config.InvoiceExpiry) * time.Second)},
	}
	if _, err := svc.DB.NewInsert().Model(zap).Exec(ctx); err != nil {
		return nil, err
	}

	if rHash != "" {
		result, err := svc.CheckSettlement(ctx, rHash, paymentRequest)
		// verification trouble leaves the zap pending, it is not fatal
		if err != nil {
			svc.Logger.Errorf("Settlement check failed for zap_id:%s error:%v", zap.ID, err)
			return zap, nil
		}
		if result.Settled {
			if _, err := svc.SettleZap(ctx, zap); err != nil {
				return zap, err
			}
		}
	}
	return zap, nil
}

// SettleZap applies the pending -> paid transition and its side effects
// exactly once. The guard update and both accumulator increments run in
// one transaction; the increments are commutative atomic adds, never
// client-computed totals, so concurrent zaps on the same post cannot
// lose updates. Returns whether this call performed the transition.
func (svc *SatstackerService) SettleZap(ctx context.Context, zap *models.Zap) (bool, error) {
	applied := false
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		result, err := tx.NewUpdate().Model((*models.Zap)(nil)).
			Set("state = ?", common.ZapStatePaid).
			Set("settled_at = ?", now).
			Set("updated_at = ?", now).
			Where("id = ?", zap.ID).
			Where("state = ?", common.ZapStatePending).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// already paid (or expired); nothing to apply
			return nil
		}

		// profile zaps carry no post
		if zap.PostID != "" {
			if _, err := tx.NewUpdate().Model((*models.Post)(nil)).
				Set("total_sats = total_sats + ?", zap.Amount).
				Set("zap_count = zap_count + 1").
				Set("updated_at = ?", now).
				Where("id = ?", zap.PostID).
				Exec(ctx); err != nil {
				return err
			}
		}
		if _, err := tx.NewUpdate().Model((*models.User)(nil)).
			Set("total_sats_earned = total_sats_earned + ?", zap.Amount).
			Set("updated_at = ?", now).
			Where("id = ?", zap.ToUserID).
			Exec(ctx); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		zap.State = common.ZapStatePaid
		zap.SettledAt = bun.NullTime{Time: time.Now()}
		svc.Logger.Infof("Zap settled: zap_id:%s post_id:%s amount:%v", zap.ID, zap.PostID, zap.Amount)
		svc.ZapPubSub.Publish(zap.ToUserID, *zap)
	}
	return applied, nil
}

// ConfirmZap re-checks settlement for a pending zap ("I've paid"). If
// the node has not seen the payment yet the caller gets
// ErrSettlementUnconfirmed, a retryable state, never a hard failure.
func (svc *SatstackerService) ConfirmZap(ctx context.Context, zapId string) (*models.Zap, error) {
	zap, err := svc.FindZap(ctx, zapId)
	if err != nil {
		return nil, err
	}
	if zap.State == common.ZapStatePaid {
		return zap, nil
	}
	if zap.State != common.ZapStatePending {
		return zap, ErrSettlementUnconfirmed
	}

	result, err := svc.CheckSettlement(ctx, zap.RHash, zap.PaymentRequest)
	if err != nil {
		return zap, err
	}
	if !result.Settled {
		return zap, ErrSettlementUnconfirmed
	}
	if _, err := svc.SettleZap(ctx, zap); err != nil {
		return zap, err
	}
	return zap, nil
}

func (svc *SatstackerService) FindZap(ctx context.Context, zapId string) (*models.Zap, error) {
	var zap models.Zap
	err := svc.DB.NewSelect().Model(&zap).Where("zap.id = ?", zapId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &zap, nil
}

func (svc *SatstackerService) FindZapByHash(ctx context.Context, rHash string) (*models.Zap, error) {
	var zap models.Zap
	err := svc.DB.NewSelect().Model(&zap).Where("r_hash = ?", rHash).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &zap, nil
}

func (svc *SatstackerService) PendingZaps(ctx context.Context) ([]models.Zap, error) {
	zaps := []models.Zap{}
	err := svc.DB.NewSelect().Model(&zaps).
		Where("state = ?", common.ZapStatePending).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return zaps, nil
}

// ExpireStaleZaps moves pending zaps whose invoice window has passed to
// the terminal expired state, excluding them from any future aggregate
// recomputation. Returns the number of zaps expired.
func (svc *SatstackerService) ExpireStaleZaps(ctx context.Context) (int64, error) {
	now := time.Now()
	result, err := svc.DB.NewUpdate().Model((*models.Zap)(nil)).
		Set("state = ?", common.ZapStateExpired).
		Set("updated_at = ?", now).
		Where("state = ?", common.ZapStatePending).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
