package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User : User model. TotalSatsEarned is maintained incrementally on zap
// settlement and can be recomputed from the zap ledger for repair.
type User struct {
	ID               string       `json:"id" bun:",pk"`
	Login            string       `json:"login" bun:",unique,notnull"`
	Password         string       `json:"-" bun:",notnull"`
	Nickname         string       `json:"nickname" bun:",nullzero"`
	LightningAddress string       `json:"lightning_address" bun:",nullzero"`
	NostrPubkey      string       `json:"nostr_pubkey" bun:",nullzero"`
	NostrSecret      string       `json:"-" bun:",nullzero"`
	NWCUri           string       `json:"-" bun:"nwc_uri,nullzero"`
	TotalSatsEarned  int64        `json:"total_sats_earned"`
	CreatedAt        time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt        bun.NullTime `json:"updated_at"`
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
	case *bun.UpdateQuery:
		u.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*User)(nil)
