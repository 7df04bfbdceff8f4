package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/db/models"
)

func (svc *FassethubService) StartWebhookSubscription(ctx context.Context) {

	svc.Logger.Infof("Starting webhook subscription with webhook url %s", svc.Config.WebhookUrl)
	settledInvoices := make(chan models.Invoice)
	subId, err := svc.InvoicePubSub.Subscribe(common.TopicInvoiceSettled, settledInvoices)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer svc.InvoicePubSub.Unsubscribe(subId, common.TopicInvoiceSettled)
	for {
		select {
		case <-ctx.Done():
			return
		case settled := <-settledInvoices:
			svc.postToWebhook(settled)
		}
	}
}
func (svc *FassethubService) postToWebhook(invoice models.Invoice) {

	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(invoice)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(svc.Config.WebhookUrl, "application/json", payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
