package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/flare"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintForInvoiceSubmitsOnce(t *testing.T) {
	svc := newTestService(t)
	mint := &mockMintClient{txHash: "0xminthash"}
	svc.FlareClient = mint
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, testFlareAddress)
	require.NoError(t, err)
	_, err = svc.MarkInvoicePaid(ctx, invoice.ID, "TX1", 1_000_000)
	require.NoError(t, err)

	err = svc.MintForInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, mint.callCount())

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xminthash", current.MintTxHash)
	assert.False(t, current.MintInProgress)
	assert.Equal(t, common.InvoiceStatePaid, current.State)

	// a second submission attempt loses the marker claim
	err = svc.MintForInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, 1, mint.callCount())
}

func TestMintForInvoiceRequiresPaidState(t *testing.T) {
	svc := newTestService(t)
	mint := &mockMintClient{}
	svc.FlareClient = mint
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, testFlareAddress)
	require.NoError(t, err)

	err = svc.MintForInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, 0, mint.callCount())
}

func TestMintFailureKeepsInvoicePaid(t *testing.T) {
	svc := newTestService(t)
	mint := &mockMintClient{err: errors.New("rpc unreachable")}
	svc.FlareClient = mint
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, testFlareAddress)
	require.NoError(t, err)
	_, err = svc.MarkInvoicePaid(ctx, invoice.ID, "TX1", 1_000_000)
	require.NoError(t, err)

	err = svc.MintForInvoice(ctx, invoice.ID)
	assert.Error(t, err)

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	// a failed mint never reverts the payment state
	assert.Equal(t, common.InvoiceStatePaid, current.State)
	assert.Equal(t, "", current.MintTxHash)
	// the marker is released so the retry sweep can claim it again
	assert.False(t, current.MintInProgress)
	assert.Contains(t, current.ErrorMessage, "rpc unreachable")
}

func TestRetryPendingMints(t *testing.T) {
	svc := newTestService(t)
	mint := &mockMintClient{err: errors.New("rpc unreachable")}
	svc.FlareClient = mint
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, testFlareAddress)
	require.NoError(t, err)
	_, err = svc.MarkInvoicePaid(ctx, invoice.ID, "TX1", 1_000_000)
	require.NoError(t, err)

	err = svc.MintForInvoice(ctx, invoice.ID)
	assert.Error(t, err)

	// the node comes back, the sweep picks the invoice up
	mint.err = nil
	mint.txHash = "0xretryhash"
	err = svc.RetryPendingMints(ctx)
	require.NoError(t, err)

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xretryhash", current.MintTxHash)
	assert.Equal(t, "", current.ErrorMessage)

	// nothing left to retry
	before := mint.callCount()
	err = svc.RetryPendingMints(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, mint.callCount())
}

func TestSettlementTriggersMint(t *testing.T) {
	svc := newTestService(t)
	mint := &mockMintClient{txHash: "0xsettlementmint"}
	svc.FlareClient = mint
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, testFlareAddress)
	require.NoError(t, err)

	err = svc.ProcessObservedTransaction(ctx, paymentFor(invoice, "TX1"))
	require.NoError(t, err)

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatePaid, current.State)
	assert.Equal(t, "0xsettlementmint", current.MintTxHash)
	assert.Equal(t, 1, mint.callCount())

	// redelivery after settlement must not mint again
	err = svc.ProcessObservedTransaction(ctx, paymentFor(invoice, "TX1"))
	require.NoError(t, err)
	assert.Equal(t, 1, mint.callCount())
}

func TestMintAmountIsTheRequestedAmount(t *testing.T) {
	svc := newTestService(t)
	mint := &mockMintClient{txHash: "0xminthash"}
	svc.FlareClient = mint
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, testFlareAddress)
	require.NoError(t, err)

	// an underpayment settles the invoice and is recorded, but the mint
	// is for the requested amount
	underpaid := paymentFor(invoice, "TX1")
	underpaid.AmountDrops = 400_000
	err = svc.ProcessObservedTransaction(ctx, underpaid)
	require.NoError(t, err)

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatePaid, current.State)
	assert.Equal(t, int64(400_000), current.PaidAmountDrops)
	assert.Equal(t, "0xminthash", current.MintTxHash)

	require.Equal(t, 1, mint.callCount())
	assert.Equal(t, flare.TokenUnitsFromDrops(1_000_000), mint.lastAmount())
}

func TestSettlementWithoutFlareAddressDoesNotMint(t *testing.T) {
	svc := newTestService(t)
	mint := &mockMintClient{}
	svc.FlareClient = mint
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, 1, 1_000_000, "")
	require.NoError(t, err)

	err = svc.ProcessObservedTransaction(ctx, paymentFor(invoice, "TX1"))
	require.NoError(t, err)

	current, err := svc.FindInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatePaid, current.State)
	assert.Equal(t, 0, mint.callCount())
}
