package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Zap : Zap model. State moves pending -> paid exactly once, triggered
// only by a confirmed settlement; there is no transition out of paid.
// Stale pending zaps are swept to expired.
type Zap struct {
	ID             string       `json:"id" bun:",pk"`
	PostID         string       `json:"post_id" bun:",nullzero"`
	Post           *Post        `json:"-" bun:"rel:belongs-to,join:post_id=id"`
	FromUserID     string       `json:"from_user_id" bun:",nullzero"`
	ToUserID       string       `json:"to_user_id" bun:",notnull"`
	Amount         int64        `json:"amount" validate:"gt=0"`
	Comment        string       `json:"comment" bun:",nullzero"`
	RHash          string       `json:"r_hash" bun:",nullzero"`
	PaymentRequest string       `json:"payment_request" bun:",nullzero"`
	State          string       `json:"state" bun:",notnull,default:'pending'"`
	ExpiresAt      bun.NullTime `json:"expires_at"`
	SettledAt      bun.NullTime `json:"settled_at"`
	CreatedAt      time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      bun.NullTime `json:"updated_at"`
}

func (z *Zap) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if z.ID == "" {
			z.ID = uuid.NewString()
		}
	case *bun.UpdateQuery:
		z.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Zap)(nil)
