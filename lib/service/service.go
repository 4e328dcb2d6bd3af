package service

import (
	"context"
	"errors"

	"github.com/satstacker/satstacker.go/lnd"
	"github.com/satstacker/satstacker.go/lnurl"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

// Typed failures of the zap flow. Controllers translate these into the
// matching error responses; everything else is a generic server error.
var (
	ErrInvalidAmount         = errors.New("amount must be a positive number of sats")
	ErrPostNotFound          = errors.New("post not found")
	ErrSigningKeyRequired    = errors.New("no nostr signing key configured")
	ErrWalletNotConnected    = errors.New("no wallet connection configured")
	ErrRecipientNotPayable   = errors.New("recipient has no lightning address")
	ErrDemoInvoiceNotPayable = errors.New("demo invoices can not be paid")
	ErrSettlementUnconfirmed = errors.New("payment not settled yet")
)

// WalletPayFunc pays a BOLT11 invoice through a user's connected wallet
// and returns the preimage. Injected so tests can stub the wallet out.
type WalletPayFunc func(ctx context.Context, nwcUri string, bolt11 string) (string, error)

type SatstackerService struct {
	Config      *Config
	DB          *bun.DB
	LndClient   *lnd.Client
	LnurlClient *lnurl.Client
	Logger      *lecho.Logger
	ZapPubSub   *Pubsub
	WalletPay   WalletPayFunc
}
