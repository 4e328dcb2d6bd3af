// Package lnurl implements the client side of LUD-06/LUD-16: resolving
// a human-readable Lightning address into a payable BOLT11 invoice via
// the receiver's well-known LNURL-pay endpoint.
package lnurl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrInvalidAddress = errors.New("invalid lightning address")
	ErrInvalidAmount  = errors.New("amount must be a positive number of satoshis")
	// ErrResolution wraps every upstream failure (unreachable endpoint,
	// bad status, malformed response) so callers can tell a broken
	// recipient apart from bad input.
	ErrResolution = errors.New("lnurl resolution failed")
)

type Client struct {
	HTTPClient *http.Client
	// Scheme for the well-known request, https unless overridden in tests.
	Scheme string
}

func NewClient() *Client {
	return &Client{HTTPClient: http.DefaultClient, Scheme: "https"}
}

// PayParams is the response of the well-known lnurlp endpoint.
type PayParams struct {
	Callback    string `json:"callback"`
	MinSendable uint64 `json:"minSendable"`
	MaxSendable uint64 `json:"maxSendable"`
	Metadata    string `json:"metadata"`
	Tag         string `json:"tag"`
	AllowsNostr bool   `json:"allowsNostr"`
}

type payResponse struct {
	PR     string `json:"pr"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ResolveAddress fetches the LNURL-pay parameters for name@domain.
// A malformed address fails before any request is made.
func (c *Client) ResolveAddress(ctx context.Context, address string) (*PayParams, error) {
	name, domain, found := strings.Cut(address, "@")
	if !found || name == "" || domain == "" {
		return nil, ErrInvalidAddress
	}

	wellKnown := fmt.Sprintf("%s://%s/.well-known/lnurlp/%s", c.scheme(), domain, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: lnurlp status %d", ErrResolution, resp.StatusCode)
	}

	params := &PayParams{}
	if err := json.NewDecoder(resp.Body).Decode(params); err != nil {
		return nil, fmt.Errorf("%w: invalid lnurlp response: %v", ErrResolution, err)
	}
	if params.Callback == "" {
		return nil, fmt.Errorf("%w: lnurlp response missing callback", ErrResolution)
	}
	return params, nil
}

// RequestInvoice calls the LNURL-pay callback for the given amount.
// zapRequestJSON, when non-empty, is a signed NIP-57 zap request event
// attached as the nostr parameter so the invoice is bound to it.
func (c *Client) RequestInvoice(ctx context.Context, params *PayParams, amountSats int64, comment string, zapRequestJSON string) (string, error) {
	if amountSats <= 0 {
		return "", ErrInvalidAmount
	}
	callback, err := url.Parse(params.Callback)
	if err != nil {
		return "", fmt.Errorf("%w: invalid callback: %v", ErrResolution, err)
	}

	amountMsat := amountSats * 1000
	if amountMsat < 1 {
		amountMsat = 1
	}
	query := callback.Query()
	query.Set("amount", strconv.FormatInt(amountMsat, 10))
	if comment != "" {
		query.Set("comment", comment)
	}
	if zapRequestJSON != "" {
		query.Set("nostr", zapRequestJSON)
	}
	callback.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callback.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolution, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: callback status %d", ErrResolution, resp.StatusCode)
	}

	var payload payResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: invalid invoice response: %v", ErrResolution, err)
	}
	if payload.PR == "" {
		if payload.Reason != "" {
			return "", fmt.Errorf("%w: %s", ErrResolution, payload.Reason)
		}
		return "", fmt.Errorf("%w: invoice response missing pr", ErrResolution)
	}
	return payload.PR, nil
}

func (c *Client) scheme() string {
	if c.Scheme == "" {
		return "https"
	}
	return c.Scheme
}
