package v2controllers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fassethub/fassethub.go/common"
	"github.com/fassethub/fassethub.go/lib/responses"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// InvoiceController : Add invoice controller struct
type InvoiceController struct {
	svc *service.FassethubService
}

func NewInvoiceController(svc *service.FassethubService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	ID             int64     `json:"id"`
	CorrelationTag string    `json:"correlation_tag"`
	DepositAddress string    `json:"deposit_address"`
	Amount         int64     `json:"amount"`
	PaidAmount     int64     `json:"paid_amount,omitempty"`
	FlareAddress   string    `json:"flare_address,omitempty"`
	Status         string    `json:"status"`
	PaymentTxHash  string    `json:"payment_tx_hash,omitempty"`
	MintTxHash     string    `json:"mint_tx_hash,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	SettledAt      time.Time `json:"settled_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	IsPaid         bool      `json:"is_paid"`
}

type AddInvoiceRequestBody struct {
	// amount in XRP, decimal string
	Amount       string `json:"amount" validate:"required"`
	FlareAddress string `json:"flare_address" validate:"omitempty"`
}

type AddInvoiceResponseBody struct {
	ID             int64     `json:"id"`
	CorrelationTag string    `json:"correlation_tag"`
	DepositAddress string    `json:"deposit_address"`
	Amount         int64     `json:"amount"`
	ExpiresAt      time.Time `json:"expires_at"`
	QRCode         string    `json:"qr_code,omitempty"`
}

type GetInvoicesResponseBody struct {
	Invoices []Invoice `json:"invoices"`
}

// AddInvoice godoc
// @Summary      Create a new invoice
// @Description  Returns a new invoice with a correlation tag to put in the payment memo
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        invoice  body      AddInvoiceRequestBody  True  "Add Invoice"
// @Success      200      {object}  AddInvoiceResponseBody
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /v2/invoices [post]
// @Security     OAuth2Password
func (controller *InvoiceController) AddInvoice(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	var body AddInvoiceRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load addinvoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid addinvoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	amountDrops, err := dropsFromXRPString(body.Amount)
	if err != nil {
		c.Logger().Errorf("Invalid invoice amount user_id:%v amount:%s %v", userID, body.Amount, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	c.Logger().Infof("Adding invoice: user_id:%v amount:%v flare_address:%s", userID, amountDrops, body.FlareAddress)

	invoice, err := controller.svc.CreateInvoice(c.Request().Context(), userID, amountDrops, body.FlareAddress)
	if err != nil {
		c.Logger().Errorf("Error creating invoice: user_id:%v error: %v", userID, err)
		if errors.Is(err, service.ErrInvalidFlareAddress) {
			return c.JSON(http.StatusBadRequest, responses.InvalidDestinationError)
		}
		if errors.Is(err, service.ErrMaxAmountExceeded) {
			return c.JSON(http.StatusBadRequest, responses.ReceiveExceededError)
		}
		sentry.CaptureException(err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	controller.svc.Monitor.Watch(invoice.ID)

	responseBody := AddInvoiceResponseBody{
		ID:             invoice.ID,
		CorrelationTag: invoice.CorrelationTag,
		DepositAddress: invoice.DepositAddress,
		Amount:         invoice.AmountDrops,
		ExpiresAt:      invoice.ExpiresAt,
	}
	qr, err := depositQRCode(invoice.DepositAddress, invoice.CorrelationTag, invoice.AmountDrops)
	if err != nil {
		// the invoice is usable without the QR code
		c.Logger().Errorf("Failed to encode deposit QR code invoice_id:%v %v", invoice.ID, err)
	} else {
		responseBody.QRCode = qr
	}

	return c.JSON(http.StatusOK, &responseBody)
}

// GetInvoices godoc
// @Summary      Retrieve invoices
// @Description  Returns a list of invoices for a user
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoices(c echo.Context) error {
	userId := c.Get("UserID").(int64)

	invoices, err := controller.svc.InvoicesFor(c.Request().Context(), userId)
	if err != nil {
		return err
	}

	response := make([]Invoice, len(invoices))
	for i, invoice := range invoices {
		response[i] = Invoice{
			ID:             invoice.ID,
			CorrelationTag: invoice.CorrelationTag,
			DepositAddress: invoice.DepositAddress,
			Amount:         invoice.AmountDrops,
			PaidAmount:     invoice.PaidAmountDrops,
			FlareAddress:   invoice.FlareAddress,
			Status:         invoice.State,
			PaymentTxHash:  invoice.PaymentTxHash,
			MintTxHash:     invoice.MintTxHash,
			ErrorMessage:   invoice.ErrorMessage,
			SettledAt:      invoice.SettledAt.Time,
			ExpiresAt:      invoice.ExpiresAt,
			IsPaid:         invoice.State == common.InvoiceStatePaid,
		}
	}
	return c.JSON(http.StatusOK, &GetInvoicesResponseBody{Invoices: response})
}

// GetInvoice godoc
// @Summary      Get a specific invoice
// @Description  Retrieve information about a specific invoice by id
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), invoiceID)
	if err != nil || invoice.UserID != userID {
		c.Logger().Errorf("Invalid invoice request user_id:%v invoice_id:%v", userID, invoiceID)
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	responseBody := Invoice{
		ID:             invoice.ID,
		CorrelationTag: invoice.CorrelationTag,
		DepositAddress: invoice.DepositAddress,
		Amount:         invoice.AmountDrops,
		PaidAmount:     invoice.PaidAmountDrops,
		FlareAddress:   invoice.FlareAddress,
		Status:         invoice.State,
		PaymentTxHash:  invoice.PaymentTxHash,
		MintTxHash:     invoice.MintTxHash,
		ErrorMessage:   invoice.ErrorMessage,
		SettledAt:      invoice.SettledAt.Time,
		ExpiresAt:      invoice.ExpiresAt,
		IsPaid:         invoice.State == common.InvoiceStatePaid,
	}
	return c.JSON(http.StatusOK, &responseBody)
}

// dropsFromXRPString converts a decimal XRP amount into drops, the integer
// unit everything downstream works with. Fractions below one drop are
// rejected, not rounded.
func dropsFromXRPString(amount string) (int64, error) {
	xrp, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, err
	}
	drops := xrp.Mul(decimal.NewFromInt(common.DropsPerXRP))
	if !drops.IsInteger() {
		return 0, fmt.Errorf("amount has sub-drop precision: %s", amount)
	}
	if drops.IsNegative() {
		return 0, fmt.Errorf("amount is negative: %s", amount)
	}
	return drops.IntPart(), nil
}

func depositQRCode(address, tag string, amountDrops int64) (string, error) {
	payload := fmt.Sprintf("%s?dt=%s&amount=%d", address, tag, amountDrops)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
