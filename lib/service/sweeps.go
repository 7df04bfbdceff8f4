package service

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
)

// ExpireStaleInvoices transitions every pending invoice past its expiry to
// expired. An invoice that gets paid between the listing and the transition
// makes the compare-and-swap fail, which is logged and skipped.
func (svc *FassethubService) ExpireStaleInvoices(ctx context.Context) error {
	now := time.Now()
	invoices, err := svc.ListPendingInvoices(ctx, &now)
	if err != nil {
		return err
	}
	for _, invoice := range invoices {
		if _, err := svc.MarkInvoiceExpired(ctx, invoice.ID); err != nil {
			if errors.Is(err, ErrConflict) {
				svc.Logger.Infof("Invoice paid before expiry sweep could claim it invoice_id:%d", invoice.ID)
				continue
			}
			svc.Logger.Errorf("Failed to expire invoice invoice_id:%d %v", invoice.ID, err)
			sentry.CaptureException(err)
			continue
		}
		svc.Logger.Infof("Invoice expired by sweep invoice_id:%d", invoice.ID)
	}
	return nil
}

// StartExpirySweepRoutine runs ExpireStaleInvoices on a fixed interval. The
// per-invoice watchers normally expire invoices first; the sweep is the
// backstop for invoices without a live watcher.
func (svc *FassethubService) StartExpirySweepRoutine(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(svc.Config.ExpirySweepInterval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.ExpireStaleInvoices(ctx); err != nil {
				svc.Logger.Errorf("Expiry sweep failed %v", err)
				sentry.CaptureException(err)
			}
		}
	}
}

// StartMintRetryRoutine periodically re-submits mints for paid invoices
// that are still missing a mint transaction.
func (svc *FassethubService) StartMintRetryRoutine(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(svc.Config.MintRetryInterval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.RetryPendingMints(ctx); err != nil {
				svc.Logger.Errorf("Mint retry sweep failed %v", err)
				sentry.CaptureException(err)
			}
		}
	}
}
