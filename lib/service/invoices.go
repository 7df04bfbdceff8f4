package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/db/models"
	"github.com/fassethub/fassethub.go/xrpl"
	"github.com/uptrace/bun"
)

var (
	// ErrConflict : the compare-and-swap on an invoice's state lost against
	// a concurrent writer. Expected under concurrent observers, never fatal.
	ErrConflict = errors.New("invoice state conflict")
	// ErrTagCollision : a freshly generated correlation tag already exists.
	ErrTagCollision = errors.New("correlation tag collision")
	// ErrInvalidFlareAddress : the mint destination is not a hex address.
	ErrInvalidFlareAddress = errors.New("invalid flare address")
	// ErrMaxAmountExceeded : the requested amount is above the configured cap.
	ErrMaxAmountExceeded = errors.New("max invoice amount exceeded")
)

func (svc *FassethubService) CreateInvoice(ctx context.Context, userID int64, amountDrops int64, flareAddress string) (*models.Invoice, error) {
	if amountDrops <= 0 {
		return nil, fmt.Errorf("invoice amount must be positive")
	}
	if svc.Config.MaxInvoiceAmount > 0 && amountDrops > svc.Config.MaxInvoiceAmount {
		return nil, fmt.Errorf("%w: %d drops over a maximum of %d", ErrMaxAmountExceeded, amountDrops, svc.Config.MaxInvoiceAmount)
	}
	if flareAddress != "" && !ethcommon.IsHexAddress(flareAddress) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFlareAddress, flareAddress)
	}

	// retry once on the astronomically unlikely tag collision
	for attempt := 0; attempt < 2; attempt++ {
		tag, err := GenerateCorrelationTag()
		if err != nil {
			return nil, err
		}
		invoice := &models.Invoice{
			UserID:         userID,
			AmountDrops:    amountDrops,
			DepositAddress: svc.Config.XRPLDepositAddress,
			CorrelationTag: tag,
			FlareAddress:   flareAddress,
			State:          common.InvoiceStatePending,
			ExpiresAt:      time.Now().Add(time.Duration(svc.Config.InvoiceExpiry) * time.Second),
		}
		_, err = svc.DB.NewInsert().Model(invoice).Exec(ctx)
		if err == nil {
			return invoice, nil
		}
		if !isUniqueViolation(err, "correlation_tag") {
			return nil, err
		}
		svc.Logger.Warnf("Correlation tag collision, regenerating. tag:%s", tag)
	}
	return nil, ErrTagCollision
}

func isUniqueViolation(err error, column string) bool {
	msg := strings.ToLower(err.Error())
	return (strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")) && strings.Contains(msg, column)
}

func (svc *FassethubService) FindInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := svc.DB.NewSelect().Model(&invoice).Where("invoice.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (svc *FassethubService) FindInvoiceByCorrelationTag(ctx context.Context, tag string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := svc.DB.NewSelect().Model(&invoice).Where("invoice.correlation_tag = ?", tag).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (svc *FassethubService) InvoicesFor(ctx context.Context, userID int64) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := svc.DB.NewSelect().Model(&invoices).Where("user_id = ?", userID).OrderExpr("id DESC").Limit(100).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// ListPendingInvoices returns pending invoices, optionally only those whose
// expiry deadline lies before olderThan (used by the expiry sweep).
func (svc *FassethubService) ListPendingInvoices(ctx context.Context, olderThan *time.Time) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	query := svc.DB.NewSelect().Model(&invoices).Where("state = ?", common.InvoiceStatePending)
	if olderThan != nil {
		query = query.Where("expires_at <= ?", *olderThan)
	}
	err := query.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// TransitionInvoice is the sole mutation primitive for invoice state: a
// compare-and-swap that only commits if the stored state still equals
// expectedState. The first writer wins, every other concurrent writer gets
// ErrConflict and must discard its effect. This also holds across multiple
// process instances sharing the store.
func (svc *FassethubService) TransitionInvoice(ctx context.Context, invoiceID int64, expectedState, newState string, apply func(*bun.UpdateQuery)) (*models.Invoice, error) {
	query := svc.DB.NewUpdate().Model((*models.Invoice)(nil)).
		Set("state = ?", newState).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND state = ?", invoiceID, expectedState)
	if apply != nil {
		apply(query)
	}
	result, err := query.Exec(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrConflict
	}
	return svc.FindInvoice(ctx, invoiceID)
}

// MarkInvoicePaid transitions pending → paid and records the satisfying
// transaction. The observed amount is stored for audit, it is deliberately
// not validated against the requested amount.
func (svc *FassethubService) MarkInvoicePaid(ctx context.Context, invoiceID int64, txHash string, paidAmountDrops int64) (*models.Invoice, error) {
	return svc.TransitionInvoice(ctx, invoiceID, common.InvoiceStatePending, common.InvoiceStatePaid, func(q *bun.UpdateQuery) {
		q.Set("payment_tx_hash = ?", txHash).
			Set("paid_amount_drops = ?", paidAmountDrops).
			Set("settled_at = ?", time.Now())
	})
}

// MarkInvoiceExpired transitions pending → expired. Racing against a payment
// observation is resolved by the compare-and-swap: the loser gets
// ErrConflict.
func (svc *FassethubService) MarkInvoiceExpired(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	return svc.TransitionInvoice(ctx, invoiceID, common.InvoiceStatePending, common.InvoiceStateExpired, nil)
}

// RecordOrphanPayment inserts an orphan record keyed by transaction hash,
// insert-if-absent. Returns false if the orphan was already recorded.
func (svc *FassethubService) RecordOrphanPayment(ctx context.Context, transaction xrpl.ObservedTransaction) (bool, error) {
	orphan := models.OrphanPayment{
		TxHash:             transaction.TxHash,
		SourceAddress:      transaction.SourceAddress,
		DestinationAddress: transaction.DestinationAddress,
		AmountDrops:        transaction.AmountDrops,
		MemoText:           transaction.MemoText,
	}
	result, err := svc.DB.NewInsert().Model(&orphan).On("CONFLICT (tx_hash) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (svc *FassethubService) ListOrphanPayments(ctx context.Context) ([]models.OrphanPayment, error) {
	orphans := []models.OrphanPayment{}
	err := svc.DB.NewSelect().Model(&orphans).OrderExpr("created_at DESC").Limit(100).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orphans, nil
}
