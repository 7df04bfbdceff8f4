package v2controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/db/models"
	"github.com/fassethub/fassethub.go/lib/responses"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/fassethub/fassethub.go/lib/tokens"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// InvoiceStreamController : InvoiceStreamController struct
type InvoiceStreamController struct {
	svc *service.FassethubService
}

type InvoiceEventWrapper struct {
	Type    string   `json:"type"`
	Invoice *Invoice `json:"invoice,omitempty"`
}

func NewInvoiceStreamController(svc *service.FassethubService) *InvoiceStreamController {
	return &InvoiceStreamController{svc: svc}
}

// StreamInvoice pushes state changes for a single invoice to the client
func (controller *InvoiceStreamController) StreamInvoice(c echo.Context) error {
	userId, err := tokens.ParseAccessToken(controller.svc.Config.JWTSecret, c.QueryParam("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), invoiceID)
	if err != nil || invoice.UserID != userId {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}

	topic := strconv.FormatInt(invoiceID, 10)
	invoiceChan := make(chan models.Invoice)
	subId, err := controller.svc.InvoicePubSub.Subscribe(topic, invoiceChan)
	if err != nil {
		return err
	}
	upgrader := websocket.Upgrader{}
	upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		controller.svc.InvoicePubSub.Unsubscribe(subId, topic)
		return err
	}
	defer ws.Close()

	//start listening for close messages
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	//start with keepalive message
	err = ws.WriteJSON(&InvoiceEventWrapper{Type: "keepalive"})
	if err != nil {
		controller.svc.Logger.Error(err)
		controller.svc.InvoicePubSub.Unsubscribe(subId, topic)
		return err
	}
SocketLoop:
	for {
		select {
		case <-done:
			break SocketLoop
		case <-ticker.C:
			err := ws.WriteJSON(&InvoiceEventWrapper{Type: "keepalive"})
			if err != nil {
				controller.svc.Logger.Error(err)
				break SocketLoop
			}
		case settled := <-invoiceChan:
			err := ws.WriteJSON(
				&InvoiceEventWrapper{
					Type: "invoice",
					Invoice: &Invoice{
						ID:             settled.ID,
						CorrelationTag: settled.CorrelationTag,
						DepositAddress: settled.DepositAddress,
						Amount:         settled.AmountDrops,
						PaidAmount:     settled.PaidAmountDrops,
						FlareAddress:   settled.FlareAddress,
						Status:         settled.State,
						PaymentTxHash:  settled.PaymentTxHash,
						MintTxHash:     settled.MintTxHash,
						SettledAt:      settled.SettledAt.Time,
						ExpiresAt:      settled.ExpiresAt,
						IsPaid:         settled.State == common.InvoiceStatePaid,
					}})
			if err != nil {
				controller.svc.Logger.Error(err)
				break SocketLoop
			}
		}
	}
	controller.svc.InvoicePubSub.Unsubscribe(subId, topic)
	return nil
}
