package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- zaps always carry a positive amount
				alter table zaps
				ADD CONSTRAINT check_zap_amount_positive
				CHECK (amount > 0);

			-- the sat accumulator is append-only, it must never go negative
				alter table posts
				ADD CONSTRAINT check_total_sats_non_negative
				CHECK (total_sats >= 0);

				alter table users
				ADD CONSTRAINT check_total_sats_earned_non_negative
				CHECK (total_sats_earned >= 0);
		`
		_, err := db.Exec(sql)
		return err
	}, nil)
}
