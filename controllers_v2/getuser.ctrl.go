package v2controllers

import (
	"net/http"
	"time"

	"github.com/fassethub/fassethub.go/lib/responses"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// GetUserController : Get user controller struct
type GetUserController struct {
	svc *service.FassethubService
}

func NewGetUserController(svc *service.FassethubService) *GetUserController {
	return &GetUserController{svc: svc}
}

type GetUserResponseBody struct {
	ID        int64     `json:"id"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
}

// GetUser godoc
// @Summary      Get the authenticated account
// @Description  Returns the account behind the access token
// @Accept       json
// @Produce      json
// @Tags         Account
// @Success      200  {object}  GetUserResponseBody
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v2/users/me [get]
// @Security     OAuth2Password
func (controller *GetUserController) GetUser(c echo.Context) error {
	userID := c.Get("UserID").(int64)

	user, err := controller.svc.FindUser(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("Failed to load user user_id:%v %v", userID, err)
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}

	return c.JSON(http.StatusOK, &GetUserResponseBody{
		ID:        user.ID,
		Login:     user.Login,
		CreatedAt: user.CreatedAt,
	})
}
