package models

import (
	"time"
)

// OrphanPayment : a successful payment to the watched address that matched
// no invoice. Keyed by the ledger transaction hash so duplicate observations
// cannot create duplicate records.
type OrphanPayment struct {
	TxHash             string    `json:"tx_hash" bun:",pk"`
	SourceAddress      string    `json:"source_address" bun:",nullzero"`
	DestinationAddress string    `json:"destination_address" bun:",notnull"`
	AmountDrops        int64     `json:"amount_drops"`
	MemoText           string    `json:"memo_text,omitempty" bun:",nullzero"`
	CreatedAt          time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
