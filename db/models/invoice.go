package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Invoice : Invoice Model
//
// An invoice is correlated to an XRPL payment through CorrelationTag, which
// the payer puts into the payment's memo field. DepositAddress is shared
// across invoices; the tag is what disambiguates them.
type Invoice struct {
	ID              int64        `json:"id" bun:",pk,autoincrement"`
	UserID          int64        `json:"user_id" validate:"required"`
	User            *User        `json:"-" bun:"rel:belongs-to,join:user_id=id"`
	AmountDrops     int64        `json:"amount_drops" validate:"gte=0"`
	PaidAmountDrops int64        `json:"paid_amount_drops,omitempty" bun:",nullzero"`
	DepositAddress  string       `json:"deposit_address" bun:",notnull"`
	CorrelationTag  string       `json:"correlation_tag" bun:",unique,notnull"`
	FlareAddress    string       `json:"flare_address,omitempty" bun:",nullzero"`
	State           string       `json:"state" bun:",default:'pending'"`
	PaymentTxHash   string       `json:"payment_tx_hash,omitempty" bun:",nullzero"`
	MintTxHash      string       `json:"mint_tx_hash,omitempty" bun:",nullzero"`
	MintInProgress  bool         `json:"-" bun:",notnull,default:false"`
	ErrorMessage    string       `json:"error_message,omitempty" bun:",nullzero"`
	CreatedAt       time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	ExpiresAt       time.Time    `json:"expires_at" bun:",notnull"`
	UpdatedAt       bun.NullTime `json:"updated_at"`
	SettledAt       bun.NullTime `json:"settled_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
