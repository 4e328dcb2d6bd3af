package lnd

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ziflex/lecho/v3"
)

// Invoice is the result of resolving a payment intent to a BOLT11
// payment request. Demo marks a fabricated, non-payable invoice.
type Invoice struct {
	PaymentRequest string
	RHash          string
	Amount         int64
	Memo           string
	Demo           bool
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// LookupResult is the normalized answer of a settlement lookup.
// Settled == false is a valid intermediate state, not an error.
type LookupResult struct {
	Settled       bool
	AmountPaidSat int64
	Message       string
}

type Client struct {
	Descriptor *Descriptor
	BaseURL    string
	HTTPClient *http.Client
	Logger     *lecho.Logger
}

func NewClient(cfg *Config, logger *lecho.Logger) (*Client, error) {
	descriptor, err := ParseDescriptor(cfg.LNDConnectAddress)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		Descriptor: descriptor,
		BaseURL:    fmt.Sprintf("https://%s:%s", descriptor.Host, descriptor.Port),
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
	if !descriptor.Demo {
		client.HTTPClient.Transport, err = transportFor(descriptor.Cert)
		if err != nil {
			return nil, err
		}
	}
	return client, nil
}

func (c *Client) IsDemo() bool {
	return c.Descriptor.Demo
}

// transportFor trusts the certificate embedded in the lndconnect URI.
// lndconnect encodes the DER certificate with base64url.
func transportFor(cert string) (*http.Transport, error) {
	if cert == "" {
		return http.DefaultTransport.(*http.Transport).Clone(), nil
	}
	der, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(cert, "="))
	if err != nil {
		return nil, fmt.Errorf("invalid cert in lndconnect address: %v", err)
	}
	pool := x509.NewCertPool()
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		// some wallets export PEM instead of raw DER
		if !pool.AppendCertsFromPEM(der) {
			return nil, fmt.Errorf("invalid cert in lndconnect address: %v", err)
		}
	} else {
		pool.AddCert(parsed)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	return transport, nil
}

type addInvoiceRequest struct {
	Value  string `json:"value"`
	Memo   string `json:"memo"`
	Expiry string `json:"expiry"`
}

type addInvoiceResponse struct {
	PaymentRequest string `json:"payment_request"`
	RHash          string `json:"r_hash"`
	AddIndex       string `json:"add_index"`
}

// AddInvoice asks the node for a new invoice. In demo mode it fabricates
// a syntactically plausible but non-payable invoice instead; callers can
// recognize those by the Demo flag and the tagged payment hash.
func (c *Client) AddInvoice(ctx context.Context, amount int64, memo string, expiry int64) (*Invoice, error) {
	now := time.Now()
	if c.Descriptor.Demo {
		return c.fabricateInvoice(amount, memo, now, expiry), nil
	}

	payload, err := json.Marshal(&addInvoiceRequest{
		Value:  strconv.FormatInt(amount, 10),
		Memo:   memo,
		Expiry: strconv.FormatInt(expiry, 10),
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/invoices", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create invoice: %s", strings.TrimSpace(string(body)))
	}

	var result addInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &Invoice{
		PaymentRequest: result.PaymentRequest,
		RHash:          normalizeHash(result.RHash),
		Amount:         amount,
		Memo:           memo,
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Duration(expiry) * time.Second),
	}, nil
}

// fabricateInvoice mirrors the demo/shorthand behavior: a fake invoice
// so the UI flow can be exercised without a reachable node.
func (c *Client) fabricateInvoice(amount int64, memo string, now time.Time, expiry int64) *Invoice {
	nonce := randomHex(12)
	return &Invoice{
		PaymentRequest: fmt.Sprintf("lnbc%d000m1p3s8xrspp5dummy%s", amount, nonce),
		RHash:          "demo_" + nonce,
		Amount:         amount,
		Memo:           memo,
		Demo:           true,
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Duration(expiry) * time.Second),
	}
}

// Lookup checks whether an invoice has been settled. Several REST
// endpoint variants exist across node versions, so an ordered list of
// candidates is tried; transport errors and non-2xx responses on a
// candidate are swallowed and the next one is tried. Only the complete
// absence of identifiers is an error.
func (c *Client) Lookup(ctx context.Context, rHash string, paymentRequest string) (*LookupResult, error) {
	if rHash == "" && paymentRequest == "" {
		return nil, fmt.Errorf("payment hash or payment request is required")
	}
	if c.Descriptor.Demo {
		return &LookupResult{Message: "demo connection format; cannot verify payment"}, nil
	}

	for _, path := range lookupCandidates(rHash, paymentRequest) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			c.Logger.Debugf("Settlement lookup candidate failed: path:%s error:%v", path, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			continue
		}
		if result, ok := normalizeLookup(body); ok {
			return result, nil
		}
	}
	// the payment may simply not have settled yet
	return &LookupResult{}, nil
}

func lookupCandidates(rHash string, paymentRequest string) []string {
	candidates := []string{}
	if rHash != "" {
		candidates = append(candidates,
			"/v2/invoices/lookup?payment_hash="+url.QueryEscape(rHash),
			"/v1/invoice/"+url.PathEscape(rHash),
		)
	}
	if paymentRequest != "" {
		candidates = append(candidates, "/v1/payreq/"+url.PathEscape(paymentRequest))
	}
	return candidates
}

// normalizeLookup flattens the response shapes of the different lookup
// endpoints into a single settled flag and paid amount.
func normalizeLookup(body []byte) (*LookupResult, bool) {
	var payload struct {
		Settled     bool            `json:"settled"`
		State       string          `json:"state"`
		IsConfirmed bool            `json:"is_confirmed"`
		IsPaid      bool            `json:"is_paid"`
		AmtPaidSat  json.Number     `json:"amt_paid_sat"`
		AmtPaidSat2 json.Number     `json:"amtPaidSat"`
		AmtPaid     json.Number     `json:"amt_paid"`
		Value       json.Number     `json:"value"`
		RHash       json.RawMessage `json:"r_hash"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	settled := payload.Settled ||
		strings.EqualFold(payload.State, "SETTLED") ||
		payload.IsConfirmed ||
		payload.IsPaid
	if !settled {
		return nil, false
	}
	var amount int64
	for _, candidate := range []json.Number{payload.AmtPaidSat, payload.AmtPaidSat2, payload.AmtPaid, payload.Value} {
		if parsed, err := candidate.Int64(); err == nil && parsed != 0 {
			amount = parsed
			break
		}
	}
	return &LookupResult{Settled: true, AmountPaidSat: amount}, true
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Grpc-Metadata-macaroon", c.Descriptor.Macaroon)
	req.Header.Set("Content-Type", "application/json")
}

// normalizeHash converts LND's base64 r_hash representation to hex.
// Hashes that are already hex are passed through unchanged.
func normalizeHash(rHash string) string {
	if decoded, err := hex.DecodeString(rHash); err == nil && len(decoded) == 32 {
		return rHash
	}
	if decoded, err := base64.StdEncoding.DecodeString(rHash); err == nil && len(decoded) == 32 {
		return hex.EncodeToString(decoded)
	}
	return rHash
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", n*2)
	}
	return hex.EncodeToString(b)
}
