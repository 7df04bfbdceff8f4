package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/fassethub/fassethub.go/xrpl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, testFlareAddress)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatePending, invoice.State)
	assert.Equal(t, testDepositAddress, invoice.DepositAddress)
	assert.Equal(t, 32, len(invoice.CorrelationTag))
	assert.True(t, invoice.ExpiresAt.After(time.Now()))

	found, err := svc.FindInvoiceByCorrelationTag(ctx, invoice.CorrelationTag)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, found.ID)
}

func TestCreateInvoiceRejectsBadAmount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, 1, 0, "")
	assert.Error(t, err)

	_, err = svc.CreateInvoice(ctx, 1, -5, "")
	assert.Error(t, err)
}

func TestCreateInvoiceRejectsMaxAmount(t *testing.T) {
	svc := newTestService(t)
	svc.Config.MaxInvoiceAmount = 100
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, 1, 101, "")
	assert.ErrorIs(t, err, service.ErrMaxAmountExceeded)

	_, err = svc.CreateInvoice(ctx, 1, 100, "")
	assert.NoError(t, err)
}

func TestCreateInvoiceRejectsBadFlareAddress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, 1, 1000, "not-an-address")
	assert.ErrorIs(t, err, service.ErrInvalidFlareAddress)
}

func TestCorrelationTagsAreUniqueAcrossInvoices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		invoice, err := svc.CreateInvoice(ctx, 1, 1000, "")
		require.NoError(t, err)
		assert.False(t, seen[invoice.CorrelationTag])
		seen[invoice.CorrelationTag] = true
	}
}

func TestTransitionInvoiceConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1000, "")
	require.NoError(t, err)

	paid, err := svc.MarkInvoicePaid(ctx, invoice.ID, "TX1", 1000)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatePaid, paid.State)
	assert.Equal(t, "TX1", paid.PaymentTxHash)
	assert.Equal(t, int64(1000), paid.PaidAmountDrops)
	assert.True(t, paid.SettledAt.Time.After(invoice.CreatedAt.Add(-time.Second)))

	// the second writer must lose the compare-and-swap
	_, err = svc.MarkInvoicePaid(ctx, invoice.ID, "TX2", 1000)
	assert.ErrorIs(t, err, service.ErrConflict)

	// and the losing write must not have touched the record
	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "TX1", current.PaymentTxHash)
}

func TestExpiryLosesAgainstPayment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1000, "")
	require.NoError(t, err)

	_, err = svc.MarkInvoicePaid(ctx, invoice.ID, "TX1", 1000)
	require.NoError(t, err)

	_, err = svc.MarkInvoiceExpired(ctx, invoice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatePaid, current.State)
}

func TestPaymentLosesAgainstExpiry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1000, "")
	require.NoError(t, err)

	_, err = svc.MarkInvoiceExpired(ctx, invoice.ID)
	require.NoError(t, err)

	_, err = svc.MarkInvoicePaid(ctx, invoice.ID, "TX1", 1000)
	assert.ErrorIs(t, err, service.ErrConflict)

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStateExpired, current.State)
}

func TestRecordOrphanPaymentDeduplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tx := xrpl.ObservedTransaction{
		SourceAddress:      "rSender",
		DestinationAddress: testDepositAddress,
		AmountDrops:        500,
		MemoText:           "unknown-tag",
		Success:            true,
		TxHash:             "ORPHAN1",
	}

	created, err := svc.RecordOrphanPayment(ctx, tx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.RecordOrphanPayment(ctx, tx)
	require.NoError(t, err)
	assert.False(t, created)

	orphans, err := svc.ListOrphanPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, orphans, 1)
}

func TestListPendingInvoices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, 1, 1000, "")
	require.NoError(t, err)
	_, err = svc.CreateInvoice(ctx, 1, 2000, "")
	require.NoError(t, err)

	pending, err := svc.ListPendingInvoices(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.MarkInvoicePaid(ctx, first.ID, "TX1", 1000)
	require.NoError(t, err)

	pending, err = svc.ListPendingInvoices(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// nothing has hit its deadline yet
	now := time.Now()
	pending, err = svc.ListPendingInvoices(ctx, &now)
	require.NoError(t, err)
	assert.Len(t, pending, 0)
}
