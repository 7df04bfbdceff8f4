package v2controllers

import (
	"net/http"
	"time"

	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// OrphanController : Orphan payment admin controller struct
type OrphanController struct {
	svc *service.FassethubService
}

func NewOrphanController(svc *service.FassethubService) *OrphanController {
	return &OrphanController{svc: svc}
}

type OrphanPayment struct {
	TxHash             string    `json:"tx_hash"`
	SourceAddress      string    `json:"source_address"`
	DestinationAddress string    `json:"destination_address"`
	Amount             int64     `json:"amount"`
	Memo               string    `json:"memo,omitempty"`
	ObservedAt         time.Time `json:"observed_at"`
}

type ListOrphansResponseBody struct {
	Orphans []OrphanPayment `json:"orphans"`
}

// ListOrphans godoc
// @Summary      List orphan payments
// @Description  Returns payments to the deposit account that could not be matched to any invoice
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Success      200  {object}  ListOrphansResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/admin/orphans [get]
func (controller *OrphanController) ListOrphans(c echo.Context) error {
	orphans, err := controller.svc.ListOrphanPayments(c.Request().Context())
	if err != nil {
		return err
	}

	response := make([]OrphanPayment, len(orphans))
	for i, orphan := range orphans {
		response[i] = OrphanPayment{
			TxHash:             orphan.TxHash,
			SourceAddress:      orphan.SourceAddress,
			DestinationAddress: orphan.DestinationAddress,
			Amount:             orphan.AmountDrops,
			Memo:               orphan.MemoText,
			ObservedAt:         orphan.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, &ListOrphansResponseBody{Orphans: response})
}
