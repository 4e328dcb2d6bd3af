// Package wallet implements a minimal Nostr Wallet Connect (NIP-47)
// client, enough to pay a BOLT11 invoice through a user's connected
// wallet. The credential is a nostr+walletconnect:// URI stored per user
// and passed in per call; the package keeps no state of its own.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip04"
)

const (
	KindWalletRequest  = 23194
	KindWalletResponse = 23195
)

var ErrNoCredentials = errors.New("no wallet connection configured")

// Connection is the parsed form of a nostr+walletconnect:// URI.
type Connection struct {
	WalletPubkey string
	Relay        string
	Secret       string
}

func ParseURI(uri string) (*Connection, error) {
	if uri == "" {
		return nil, ErrNoCredentials
	}
	if !strings.HasPrefix(uri, "nostr+walletconnect://") {
		return nil, fmt.Errorf("invalid wallet connect uri")
	}
	u, err := url.Parse(strings.Replace(uri, "nostr+walletconnect://", "http://", 1))
	if err != nil {
		return nil, fmt.Errorf("invalid wallet connect uri: %v", err)
	}
	conn := &Connection{
		WalletPubkey: u.Host,
		Relay:        u.Query().Get("relay"),
		Secret:       u.Query().Get("secret"),
	}
	if conn.WalletPubkey == "" || conn.Relay == "" || conn.Secret == "" {
		return nil, fmt.Errorf("invalid wallet connect uri: missing pubkey, relay or secret")
	}
	return conn, nil
}

type walletRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type walletResponse struct {
	ResultType string `json:"result_type"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Result *struct {
		Preimage string `json:"preimage"`
	} `json:"result"`
}

// Pay sends a pay_invoice request over the wallet relay and waits for the
// response event. It returns the payment preimage on success.
func Pay(ctx context.Context, uri string, bolt11 string) (string, error) {
	conn, err := ParseURI(uri)
	if err != nil {
		return "", err
	}

	pubkey, err := nostr.GetPublicKey(conn.Secret)
	if err != nil {
		return "", fmt.Errorf("invalid wallet connect secret: %v", err)
	}
	shared, err := nip04.ComputeSharedSecret(conn.WalletPubkey, conn.Secret)
	if err != nil {
		return "", err
	}

	params, err := json.Marshal(map[string]string{"invoice": bolt11})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(&walletRequest{Method: "pay_invoice", Params: params})
	if err != nil {
		return "", err
	}
	content, err := nip04.Encrypt(string(payload), shared)
	if err != nil {
		return "", err
	}

	ev := nostr.Event{
		PubKey:    pubkey,
		CreatedAt: nostr.Now(),
		Kind:      KindWalletRequest,
		Tags:      nostr.Tags{{"p", conn.WalletPubkey}},
		Content:   content,
	}
	if err := ev.Sign(conn.Secret); err != nil {
		return "", err
	}

	payCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	relay, err := nostr.RelayConnect(payCtx, conn.Relay)
	if err != nil {
		return "", fmt.Errorf("failed to connect to wallet relay: %w", err)
	}
	defer relay.Close()

	// subscribe before publishing so the response cannot be missed
	sub, err := relay.Subscribe(payCtx, nostr.Filters{{
		Kinds: []int{KindWalletResponse},
		Tags:  nostr.TagMap{"e": []string{ev.ID}},
	}})
	if err != nil {
		return "", err
	}
	defer sub.Unsub()

	if err := relay.Publish(payCtx, ev); err != nil {
		return "", fmt.Errorf("failed to publish wallet request: %w", err)
	}

	for {
		select {
		case <-payCtx.Done():
			return "", fmt.Errorf("timed out waiting for wallet response")
		case responseEv, ok := <-sub.Events:
			if !ok {
				return "", fmt.Errorf("wallet relay subscription closed")
			}
			plaintext, err := nip04.Decrypt(responseEv.Content, shared)
			if err != nil {
				continue
			}
			var response walletResponse
			if err := json.Unmarshal([]byte(plaintext), &response); err != nil {
				continue
			}
			if response.Error != nil {
				return "", fmt.Errorf("wallet error: %s %s", response.Error.Code, response.Error.Message)
			}
			if response.Result == nil {
				return "", fmt.Errorf("wallet returned no payment result")
			}
			return response.Result.Preimage, nil
		}
	}
}
