package migrations

import (
	"context"

	"github.com/satstacker/satstacker.go/db/models"
	"github.com/uptrace/bun"
)

/* The init migration reflects the latest model fields when run on a fresh
db. Subsequent migrations must use IfNotExists/IfExists so they stay
replayable on top of it. */
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewCreateTable().Model((*models.User)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Post)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Comment)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Zap)(nil)).Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().Model((*models.Post)(nil)).
			Index("posts_total_sats_idx").Column("total_sats").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*models.Zap)(nil)).
			Index("zaps_post_id_idx").Column("post_id").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*models.Zap)(nil)).
			Index("zaps_state_idx").Column("state").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*models.Zap)(nil)).
			Index("zaps_r_hash_idx").Column("r_hash").Exec(ctx); err != nil {
			return err
		}
		return nil
	}, nil)
}
