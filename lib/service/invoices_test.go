package service

import (
	"context"
	"strings"
	"testing"

	"github.com/satstacker/satstacker.go/common"
	"github.com/satstacker/satstacker.go/lib"
	"github.com/satstacker/satstacker.go/lnd"
	"github.com/stretchr/testify/assert"
)

// a valid mainnet payment request for 250000 sats with payment hash
// 0001020304050607080900010203040506070809000102030405060708090102
const decodablePaymentRequest = "lnbc2500u1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypqdq5xysxxatsyp3k7enxv4jsxqzpuaztrnwngzn3kdzw5hydlzf03qdgm2hdq27cqv3agm2awhz5se903vruatfhq77w3ls4evs3ch9zw97j25emudupq63nyw24cg27h2rspfj9srp"

func demoService() *SatstackerService {
	return &SatstackerService{
		Config: &Config{InvoiceExpiry: 3600},
		LndClient: &lnd.Client{
			Descriptor: &lnd.Descriptor{Host: "demo", Demo: true},
			Logger:     lib.Logger(""),
		},
		Logger: lib.Logger(""),
	}
}

func TestCreateInvoiceDemo(t *testing.T) {
	svc := demoService()
	invoice, err := svc.CreateInvoice(context.Background(), 21, "")
	assert.NoError(t, err)
	assert.True(t, invoice.Demo)
	assert.Equal(t, int64(21), invoice.Amount)
	assert.Equal(t, "Payment of 21 sats", invoice.Memo)
	assert.True(t, strings.HasPrefix(invoice.RHash, common.DemoPaymentHashPrefix))
}

func TestCreateInvoiceInvalidAmount(t *testing.T) {
	svc := demoService()
	_, err := svc.CreateInvoice(context.Background(), 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.CreateInvoice(context.Background(), -10, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCreateInvoiceMaxZapAmount(t *testing.T) {
	svc := demoService()
	svc.Config.MaxZapAmount = 100

	_, err := svc.CreateInvoice(context.Background(), 101, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.CreateInvoice(context.Background(), 100, "")
	assert.NoError(t, err)
}

func TestDecodePaymentRequest(t *testing.T) {
	svc := demoService()
	decoded, err := svc.DecodePaymentRequest(decodablePaymentRequest)
	assert.NoError(t, err)
	assert.NotNil(t, decoded.PaymentHash)
	assert.Equal(t, int64(250000), int64(decoded.MilliSat.ToSatoshis()))
}

func TestDecodePaymentRequestInvalid(t *testing.T) {
	svc := demoService()
	_, err := svc.DecodePaymentRequest("lnbc1garbage")
	assert.Error(t, err)

	_, err = svc.DecodePaymentRequest("ln")
	assert.Error(t, err)
}

func TestInvoiceFromPaymentRequest(t *testing.T) {
	svc := demoService()
	invoice, err := svc.invoiceFromPaymentRequest(decodablePaymentRequest, 21, "gm")
	assert.NoError(t, err)
	assert.Equal(t, "0001020304050607080900010203040506070809000102030405060708090102", invoice.RHash)
	// the decoded amount wins over the requested one
	assert.Equal(t, int64(250000), invoice.Amount)
	assert.False(t, invoice.Demo)
}

func TestChainFromCurrency(t *testing.T) {
	assert.Equal(t, "mainnet", ChainFromCurrency("bc").Name)
	assert.Equal(t, "regtest", ChainFromCurrency("bcrt").Name)
	assert.Equal(t, "testnet3", ChainFromCurrency("tb").Name)
	assert.Equal(t, "simnet", ChainFromCurrency("sb").Name)
}

func TestQRData(t *testing.T) {
	assert.Equal(t, "lightning:lnbc1stub", QRData("lnbc1stub"))
}
