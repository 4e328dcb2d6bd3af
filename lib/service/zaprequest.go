package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/satstacker/satstacker.go/lnd"
)

// profileMetadata is the subset of a kind-0 profile event we care about.
type profileMetadata struct {
	Lud16 string `json:"lud16"`
	Lud06 string `json:"lud06"`
}

// CreateZapRequestInvoice performs a protocol-level (NIP-57) zap: a
// signed kind-9734 event is attached to the LNURL callback so the
// resulting invoice is cryptographically bound to the request.
func (svc *SatstackerService) CreateZapRequestInvoice(ctx context.Context, sender *models.User, recipientPubkey string, postId string, amountSats int64, comment string) (*lnd.Invoice, error) {
	if amountSats <= 0 {
		return nil, ErrInvalidAmount
	}
	if sender.NostrSecret == "" {
		return nil, ErrSigningKeyRequired
	}

	relays := svc.Config.Relays()
	tags := nostr.Tags{
		{"p", recipientPubkey},
		{"amount", strconv.FormatInt(amountSats*1000, 10)},
	}
	if postId != "" {
		tags = append(tags, nostr.Tag{"e", postId})
	}
	tags = append(tags, append(nostr.Tag{"relays"}, relays...))

	event := nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      nostr.KindZapRequest,
		Tags:      tags,
		Content:   comment,
	}
	if err := event.Sign(sender.NostrSecret); err != nil {
		return nil, err
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	address, err := svc.resolveRecipientAddress(ctx, recipientPubkey)
	if err != nil {
		return nil, err
	}
	// the comment travels inside the zap request event
	return svc.ResolveLightningAddressInvoice(ctx, address, amountSats, "", string(eventJSON))
}

// resolveRecipientAddress looks the recipient's kind-0 metadata up on
// the configured relays and returns their lud16 lightning address.
func (svc *SatstackerService) resolveRecipientAddress(ctx context.Context, recipientPubkey string) (string, error) {
	filter := nostr.Filter{
		Kinds:   []int{nostr.KindProfileMetadata},
		Authors: []string{recipientPubkey},
		Limit:   1,
	}

	for _, uri := range svc.Config.Relays() {
		relayCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		relay, err := nostr.RelayConnect(relayCtx, uri)
		if err != nil {
			cancel()
			svc.Logger.Debugf("Failed to connect to relay %s: %v", uri, err)
			continue
		}
		events, err := relay.QuerySync(relayCtx, filter)
		relay.Close()
		cancel()
		if err != nil || len(events) == 0 {
			continue
		}

		var metadata profileMetadata
		if err := json.Unmarshal([]byte(events[0].Content), &metadata); err != nil {
			continue
		}
		if metadata.Lud16 != "" {
			return metadata.Lud16, nil
		}
	}
	return "", ErrRecipientNotPayable
}
