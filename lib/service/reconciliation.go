package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/xrpl"
	"github.com/getsentry/sentry-go"
)

// ProcessObservedTransaction is the single entry point for payment events,
// no matter whether the poll observer, the subscribe observer or both
// delivered them. Idempotency rests entirely on the store: the
// compare-and-swap transition for matches and the insert-if-absent orphan
// record for everything else. Feeding the same transaction twice is safe and
// expected.
func (svc *FassethubService) ProcessObservedTransaction(ctx context.Context, transaction xrpl.ObservedTransaction) error {
	if !transaction.Success {
		svc.Logger.Debugf("Ignoring unsuccessful transaction tx_hash:%s", transaction.TxHash)
		return nil
	}
	if transaction.DestinationAddress != svc.Config.XRPLDepositAddress {
		return nil
	}

	if transaction.MemoText != "" {
		invoice, err := svc.FindInvoiceByCorrelationTag(ctx, transaction.MemoText)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err == nil {
			return svc.settleInvoice(ctx, invoice.ID, transaction)
		}
		// no invoice carries this tag, fall through to the orphan path
	}

	created, err := svc.RecordOrphanPayment(ctx, transaction)
	if err != nil {
		return err
	}
	if created {
		svc.Logger.Infof("Orphan payment recorded tx_hash:%s amount:%d memo:%q", transaction.TxHash, transaction.AmountDrops, transaction.MemoText)
	} else {
		svc.Logger.Debugf("Orphan payment already recorded tx_hash:%s", transaction.TxHash)
	}
	return nil
}

// settleInvoice attempts the pending → paid transition for a matched
// payment and kicks off the mint. Losing the compare-and-swap means another
// observer (or the expiry sweep) got there first; the event is discarded.
func (svc *FassethubService) settleInvoice(ctx context.Context, invoiceID int64, transaction xrpl.ObservedTransaction) error {
	current, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if current.State != common.InvoiceStatePending {
		svc.Logger.Infof("Duplicate payment observation discarded invoice_id:%d state:%s tx_hash:%s", invoiceID, current.State, transaction.TxHash)
		return nil
	}
	if time.Now().After(current.ExpiresAt) {
		// the expiry sweep owns this transition; accepting the payment now
		// would revive an invoice the client already saw expire
		svc.Logger.Warnf("Payment observed after expiry, suppressed invoice_id:%d tx_hash:%s", invoiceID, transaction.TxHash)
		return nil
	}

	invoice, err := svc.MarkInvoicePaid(ctx, invoiceID, transaction.TxHash, transaction.AmountDrops)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			svc.Logger.Infof("Lost paid transition race, discarding observation invoice_id:%d tx_hash:%s", invoiceID, transaction.TxHash)
			return nil
		}
		return err
	}
	svc.Logger.Infof("Invoice paid invoice_id:%d amount:%d paid_amount:%d tx_hash:%s", invoice.ID, invoice.AmountDrops, invoice.PaidAmountDrops, invoice.PaymentTxHash)

	svc.InvoicePubSub.Publish(strconv.FormatInt(invoice.ID, 10), *invoice)
	svc.InvoicePubSub.Publish(common.TopicInvoiceSettled, *invoice)

	if invoice.FlareAddress != "" {
		if err := svc.MintForInvoice(ctx, invoice.ID); err != nil && !errors.Is(err, ErrConflict) {
			// the invoice stays paid, the mint retry sweep picks it up
			svc.Logger.Errorf("Mint failed, will be retried invoice_id:%d %v", invoice.ID, err)
			sentry.CaptureException(err)
		}
	}
	return nil
}
