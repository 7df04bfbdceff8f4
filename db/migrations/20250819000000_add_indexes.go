package migrations

import (
	"context"

	"github.com/fassethub/fassethub.go/db/models"
	"github.com/uptrace/bun"
)

// The expiry sweep and the mint retry sweep both scan on state; the
// reconciliation engine looks invoices up by correlation tag.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if _, err := db.NewCreateIndex().
			Model((*models.Invoice)(nil)).
			IfNotExists().
			Index("invoices_state_idx").
			Column("state").
			Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().
			Model((*models.Invoice)(nil)).
			IfNotExists().
			Index("invoices_correlation_tag_idx").
			Unique().
			Column("correlation_tag").
			Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().
			Model((*models.Invoice)(nil)).
			IfNotExists().
			Index("invoices_user_id_idx").
			Column("user_id").
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, nil)
}
