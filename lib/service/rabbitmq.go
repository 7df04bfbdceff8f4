package service

import (
	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/db/models"
)

// SubscribeSettledInvoices is the subscription hook handed to the rabbitmq
// publisher: it returns a channel that receives every invoice the moment it
// settles.
func (svc *FassethubService) SubscribeSettledInvoices() (settled chan models.Invoice, err error) {
	settled = make(chan models.Invoice)
	_, err = svc.InvoicePubSub.Subscribe(common.TopicInvoiceSettled, settled)
	if err != nil {
		return nil, err
	}
	return settled, nil
}
