package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post : Post model. TotalSats only ever grows, and only through the
// atomic increment applied when a zap settles.
type Post struct {
	ID        string       `json:"id" bun:",pk"`
	UserID    string       `json:"user_id" bun:",notnull"`
	User      *User        `json:"-" bun:"rel:belongs-to,join:user_id=id"`
	Title     string       `json:"title" bun:",notnull"`
	Url       string       `json:"url" bun:",nullzero"`
	Body      string       `json:"body" bun:",nullzero"`
	TotalSats int64        `json:"total_sats"`
	ZapCount  int64        `json:"zap_count"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}

func (p *Post) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
	case *bun.UpdateQuery:
		p.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Post)(nil)

// Comment : Comment model
type Comment struct {
	ID        string    `json:"id" bun:",pk"`
	PostID    string    `json:"post_id" bun:",notnull"`
	UserID    string    `json:"user_id" bun:",notnull"`
	Body      string    `json:"body" bun:",notnull"`
	CreatedAt time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}

func (c *Comment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Comment)(nil)
