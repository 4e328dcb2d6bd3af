package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/satstacker/satstacker.go/lnd"
)

// CreateInvoice asks the platform node for a BOLT11 invoice collecting
// amount sats. In demo mode the returned invoice is fabricated and
// tagged as such.
func (svc *SatstackerService) CreateInvoice(ctx context.Context, amount int64, memo string) (*lnd.Invoice, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if svc.Config.MaxZapAmount > 0 && amount > svc.Config.MaxZapAmount {
		return nil, ErrInvalidAmount
	}
	if memo == "" {
		memo = fmt.Sprintf("Payment of %d sats", amount)
	}

	invoice, err := svc.LndClient.AddInvoice(ctx, amount, memo, svc.Config.InvoiceExpiry)
	if err != nil {
		svc.Logger.Errorf("Error creating invoice: amount:%v error:%v", amount, err)
		return nil, err
	}
	return invoice, nil
}

// ResolveLightningAddressInvoice turns name@domain plus an amount into a
// payable invoice via the recipient's LNURL-pay endpoint. The payment
// hash is taken from the decoded invoice, so it is usable for
// settlement lookups.
func (svc *SatstackerService) ResolveLightningAddressInvoice(ctx context.Context, address string, amountSats int64, comment string, zapRequestJSON string) (*lnd.Invoice, error) {
	if amountSats <= 0 {
		return nil, ErrInvalidAmount
	}

	params, err := svc.LnurlClient.ResolveAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	paymentRequest, err := svc.LnurlClient.RequestInvoice(ctx, params, amountSats, comment, zapRequestJSON)
	if err != nil {
		return nil, err
	}
	return svc.invoiceFromPaymentRequest(paymentRequest, amountSats, comment)
}

func (svc *SatstackerService) invoiceFromPaymentRequest(paymentRequest string, amountSats int64, memo string) (*lnd.Invoice, error) {
	decoded, err := svc.DecodePaymentRequest(paymentRequest)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice returned by recipient: %w", err)
	}

	invoice := &lnd.Invoice{
		PaymentRequest: paymentRequest,
		Amount:         amountSats,
		Memo:           memo,
		CreatedAt:      decoded.Timestamp,
		ExpiresAt:      decoded.Timestamp.Add(decoded.Expiry()),
	}
	if decoded.PaymentHash != nil {
		hash := *decoded.PaymentHash
		invoice.RHash = hex.EncodeToString(hash[:])
	}
	if decoded.MilliSat != nil {
		invoice.Amount = int64(decoded.MilliSat.ToSatoshis())
	}
	return invoice, nil
}

func (svc *SatstackerService) DecodePaymentRequest(bolt11 string) (*zpay32.Invoice, error) {
	if len(bolt11) < 4 {
		return nil, fmt.Errorf("invalid payment request")
	}
	return zpay32.Decode(bolt11, ChainFromCurrency(bolt11[2:]))
}

func ChainFromCurrency(currency string) *chaincfg.Params {
	if strings.HasPrefix(currency, "bcrt") {
		return &chaincfg.RegressionNetParams
	} else if strings.HasPrefix(currency, "tb") {
		return &chaincfg.TestNet3Params
	} else if strings.HasPrefix(currency, "sb") {
		return &chaincfg.SimNetParams
	} else {
		return &chaincfg.MainNetParams
	}
}

// QRData is the URI encoded into the invoice QR code.
func QRData(paymentRequest string) string {
	return "lightning:" + paymentRequest
}
