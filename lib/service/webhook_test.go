package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/db/models"
	"github.com/stretchr/testify/assert"
)

func TestWebhookDeliversSettledInvoices(t *testing.T) {
	svc := newTestService(t)
	received := make(chan models.Invoice, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var invoice models.Invoice
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&invoice))
		received <- invoice
	}))
	t.Cleanup(server.Close)
	svc.Config.WebhookUrl = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.StartWebhookSubscription(ctx)

	// let the subscription register before publishing
	time.Sleep(50 * time.Millisecond)
	svc.InvoicePubSub.Publish(common.TopicInvoiceSettled, models.Invoice{ID: 7, State: common.InvoiceStatePaid})

	select {
	case invoice := <-received:
		assert.Equal(t, int64(7), invoice.ID)
		assert.Equal(t, common.InvoiceStatePaid, invoice.State)
	case <-time.After(2 * time.Second):
		t.Fatal("settled invoice was not delivered to the webhook")
	}
}
