package service

import (
	"context"
	"time"

	"github.com/satstacker/satstacker.go/common"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/satstacker/satstacker.go/lnd"
	"github.com/uptrace/bun"
)

// SendZap is the direct flow: resolve an invoice for the post's author,
// pay it through the sender's connected wallet, and settle the ledger
// entry with the known-settled payment. Nothing is written before the
// wallet reports success, so an abandoned or failed attempt leaves no
// partial state behind.
func (svc *SatstackerService) SendZap(ctx context.Context, sender *models.User, postId string, recipientId string, amountSats int64, comment string) (*models.Zap, error) {
	if amountSats <= 0 {
		return nil, ErrInvalidAmount
	}
	if sender.NWCUri == "" {
		return nil, ErrWalletNotConnected
	}
	// a post zap pays the post's author; a profile zap names the
	// recipient directly
	if postId != "" {
		post, err := svc.FindPost(ctx, postId)
		if err != nil {
			return nil, err
		}
		recipientId = post.UserID
	}
	author, err := svc.FindUser(ctx, recipientId)
	if err != nil {
		return nil, err
	}

	invoice, err := svc.resolveZapInvoice(ctx, sender, author, postId, amountSats, comment)
	if err != nil {
		return nil, err
	}
	// a fabricated invoice must never reach a paying wallet
	if invoice.Demo {
		return nil, ErrDemoInvoiceNotPayable
	}

	if _, err := svc.WalletPay(ctx, sender.NWCUri, invoice.PaymentRequest); err != nil {
		svc.Logger.Errorf("Wallet payment failed: user_id:%s post_id:%s error:%v", sender.ID, postId, err)
		return nil, err
	}

	zap := &models.Zap{
		PostID:         postId,
		FromUserID:     sender.ID,
		ToUserID:       author.ID,
		Amount:         amountSats,
		Comment:        comment,
		RHash:          invoice.RHash,
		PaymentRequest: invoice.PaymentRequest,
		State:          common.ZapStatePending,
		ExpiresAt:      bun.NullTime{Time: time.Now().Add(time.Duration(svc.Config.InvoiceExpiry) * time.Second)},
	}
	if _, err := svc.DB.NewInsert().Model(zap).Exec(ctx); err != nil {
		return nil, err
	}
	// the wallet held the preimage, settlement is already proven
	if _, err := svc.SettleZap(ctx, zap); err != nil {
		return zap, err
	}
	return zap, nil
}

// CreateZapInvoice resolves an invoice for zapping a post without
// paying it. The caller settles later through the confirm endpoint or
// the sweep once the invoice is paid out of band.
func (svc *SatstackerService) CreateZapInvoice(ctx context.Context, sender *models.User, postId string, amountSats int64, comment string) (*lnd.Invoice, error) {
	if amountSats <= 0 {
		return nil, ErrInvalidAmount
	}
	post, err := svc.FindPost(ctx, postId)
	if err != nil {
		return nil, err
	}
	author, err := svc.FindUser(ctx, post.UserID)
	if err != nil {
		return nil, err
	}
	return svc.resolveZapInvoice(ctx, sender, author, postId, amountSats, comment)
}

// resolveZapInvoice picks the resolution path for the author: their
// lightning address when they have one, a signed zap request when both
// sides speak nostr, the platform node otherwise.
func (svc *SatstackerService) resolveZapInvoice(ctx context.Context, sender *models.User, author *models.User, postId string, amountSats int64, comment string) (*lnd.Invoice, error) {
	if author.LightningAddress != "" {
		return svc.ResolveLightningAddressInvoice(ctx, author.LightningAddress, amountSats, comment, "")
	}
	if author.NostrPubkey != "" && sender.NostrSecret != "" {
		return svc.CreateZapRequestInvoice(ctx, sender, author.NostrPubkey, postId, amountSats, comment)
	}
	return svc.CreateInvoice(ctx, amountSats, comment)
}
