package service

import (
	"context"
	"time"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/db/models"
	"github.com/fassethub/fassethub.go/flare"
	"github.com/getsentry/sentry-go"
)

// MintForInvoice submits the downstream mint for a paid invoice, exactly
// once. The mint_in_progress marker is claimed with a conditional update so
// that concurrent callers (payment observation and the retry sweep) cannot
// both submit: the loser sees zero affected rows and returns ErrConflict.
func (svc *FassethubService) MintForInvoice(ctx context.Context, invoiceID int64) error {
	result, err := svc.DB.NewUpdate().Model((*models.Invoice)(nil)).
		Set("mint_in_progress = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND state = ? AND mint_in_progress = ? AND coalesce(mint_tx_hash, '') = ''",
			invoiceID, common.InvoiceStatePaid, false).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConflict
	}

	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}

	// the requested amount determines what is minted; over- and underpayment
	// are recorded on the invoice but never change the mint
	amount := flare.TokenUnitsFromDrops(invoice.AmountDrops)
	mintTxHash, err := svc.FlareClient.Mint(ctx, invoice.FlareAddress, amount)
	if err != nil {
		// release the marker so the retry sweep can try again; the invoice
		// stays paid regardless of how often the mint fails
		_, updateErr := svc.DB.NewUpdate().Model((*models.Invoice)(nil)).
			Set("mint_in_progress = ?", false).
			Set("error_message = ?", err.Error()).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", invoiceID).
			Exec(ctx)
		if updateErr != nil {
			svc.Logger.Errorf("Failed to release mint marker invoice_id:%d %v", invoiceID, updateErr)
			sentry.CaptureException(updateErr)
		}
		return err
	}

	_, err = svc.DB.NewUpdate().Model((*models.Invoice)(nil)).
		Set("mint_tx_hash = ?", mintTxHash).
		Set("mint_in_progress = ?", false).
		Set("error_message = ?", "").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", invoiceID).
		Exec(ctx)
	if err != nil {
		// the mint went through, only the bookkeeping failed
		svc.Logger.Errorf("Failed to persist mint tx hash invoice_id:%d mint_tx_hash:%s %v", invoiceID, mintTxHash, err)
		sentry.CaptureException(err)
		return err
	}
	svc.Logger.Infof("Mint submitted invoice_id:%d mint_tx_hash:%s amount:%s", invoiceID, mintTxHash, amount.String())
	return nil
}

// RetryPendingMints submits the mint for paid invoices that have a Flare
// address but no mint transaction yet. Invoices whose marker is still set
// are skipped here; a marker that survived a crash has to be cleared by an
// operator after checking the chain.
func (svc *FassethubService) RetryPendingMints(ctx context.Context) error {
	var invoices []models.Invoice
	err := svc.DB.NewSelect().Model(&invoices).
		Where("state = ?", common.InvoiceStatePaid).
		Where("flare_address != ''").
		Where("coalesce(mint_tx_hash, '') = ''").
		Where("mint_in_progress = ?", false).
		Scan(ctx)
	if err != nil {
		return err
	}
	for _, invoice := range invoices {
		if err := svc.MintForInvoice(ctx, invoice.ID); err != nil {
			svc.Logger.Errorf("Mint retry failed invoice_id:%d %v", invoice.ID, err)
			sentry.CaptureException(err)
		}
	}
	return nil
}
