package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fassethub/fassethub.go/common"
	"github.com/getsentry/sentry-go"
)

// InvoiceMonitor keeps one polling goroutine per pending invoice. The
// registry makes every watcher addressable: watchers are started on invoice
// creation, resumed on startup for invoices that were pending when the
// previous process stopped, and all cancelled together on shutdown.
type InvoiceMonitor struct {
	svc      *FassethubService
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	watchers map[int64]context.CancelFunc
}

func NewInvoiceMonitor(ctx context.Context, svc *FassethubService) *InvoiceMonitor {
	monitorCtx, cancel := context.WithCancel(ctx)
	return &InvoiceMonitor{
		svc:      svc,
		ctx:      monitorCtx,
		cancel:   cancel,
		watchers: map[int64]context.CancelFunc{},
	}
}

// Watch starts polling the deposit account on behalf of an invoice. Calling
// it twice for the same invoice is a no-op.
func (monitor *InvoiceMonitor) Watch(invoiceID int64) {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	if _, found := monitor.watchers[invoiceID]; found {
		return
	}
	watchCtx, cancel := context.WithCancel(monitor.ctx)
	monitor.watchers[invoiceID] = cancel
	monitor.wg.Add(1)
	go func() {
		defer monitor.wg.Done()
		defer monitor.forget(invoiceID)
		monitor.watch(watchCtx, invoiceID)
	}()
}

func (monitor *InvoiceMonitor) forget(invoiceID int64) {
	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	if cancel, found := monitor.watchers[invoiceID]; found {
		cancel()
		delete(monitor.watchers, invoiceID)
	}
}

func (monitor *InvoiceMonitor) watch(ctx context.Context, invoiceID int64) {
	logger := monitor.svc.Logger
	ticker := time.NewTicker(time.Duration(monitor.svc.Config.PollInterval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		invoice, err := monitor.svc.FindInvoice(ctx, invoiceID)
		if err != nil {
			logger.Errorf("Failed to load watched invoice invoice_id:%d %v", invoiceID, err)
			continue
		}
		// the subscribe observer or the expiry sweep may already have
		// settled the race, in which case this watcher is done
		if invoice.State != common.InvoiceStatePending {
			logger.Debugf("Stopping watcher, invoice reached terminal state invoice_id:%d state:%s", invoiceID, invoice.State)
			return
		}
		if time.Now().After(invoice.ExpiresAt) {
			if _, err := monitor.svc.MarkInvoiceExpired(ctx, invoiceID); err != nil && !errors.Is(err, ErrConflict) {
				logger.Errorf("Failed to expire invoice invoice_id:%d %v", invoiceID, err)
				continue
			}
			logger.Infof("Invoice expired invoice_id:%d", invoiceID)
			return
		}

		transactions, err := monitor.svc.XRPLClient.AccountTransactions(ctx, monitor.svc.Config.XRPLDepositAddress, monitor.svc.Config.PollTxLimit)
		if err != nil {
			logger.Errorf("Failed to poll account transactions invoice_id:%d %v", invoiceID, err)
			sentry.CaptureException(err)
			continue
		}
		for _, transaction := range transactions {
			if err := monitor.svc.ProcessObservedTransaction(ctx, transaction); err != nil {
				logger.Errorf("Failed to process polled transaction tx_hash:%s %v", transaction.TxHash, err)
				sentry.CaptureException(err)
			}
		}
	}
}

// Resume starts watchers for every invoice that is still pending, so a
// restart picks up where the previous process left off.
func (monitor *InvoiceMonitor) Resume(ctx context.Context) error {
	invoices, err := monitor.svc.ListPendingInvoices(ctx, nil)
	if err != nil {
		return err
	}
	for _, invoice := range invoices {
		monitor.Watch(invoice.ID)
	}
	monitor.svc.Logger.Infof("Resumed invoice watchers count:%d", len(invoices))
	return nil
}

// Stop cancels every watcher and waits for them to exit.
func (monitor *InvoiceMonitor) Stop() {
	monitor.cancel()
	monitor.wg.Wait()
}
