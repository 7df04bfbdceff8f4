package transport

import (
	v2controllers "github.com/fassethub/fassethub.go/controllers_v2"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/labstack/echo/v4"
)

func RegisterV2Endpoints(svc *service.FassethubService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, adminMw echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	e.POST("/v2/users", v2controllers.NewCreateUserController(svc).CreateUser, strictRateLimitMiddleware, logMw)
	e.POST("/auth", v2controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware, logMw)
	securedWithStrictRateLimit.GET("/v2/users/me", v2controllers.NewGetUserController(svc).GetUser)

	invoiceCtrl := v2controllers.NewInvoiceController(svc)
	secured.POST("/v2/invoices", invoiceCtrl.AddInvoice)
	secured.GET("/v2/invoices", invoiceCtrl.GetInvoices)
	secured.GET("/v2/invoices/:id", invoiceCtrl.GetInvoice)
	e.GET("/v2/invoices/:id/stream", v2controllers.NewInvoiceStreamController(svc).StreamInvoice)

	e.GET("/v2/admin/orphans", v2controllers.NewOrphanController(svc).ListOrphans, adminMw, logMw)

	e.GET("/health", v2controllers.NewHealthController(svc).Health)
}
