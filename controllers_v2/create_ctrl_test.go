package v2controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCreateUserRejectedWhenAccountCreationDisabled(t *testing.T) {
	svc := &service.FassethubService{Config: &service.Config{AllowAccountCreation: false}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v2/users", strings.NewReader(`{"login":"someone"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := NewCreateUserController(svc).CreateUser(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "account creation is disabled")
}
