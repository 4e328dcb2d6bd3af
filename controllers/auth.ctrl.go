package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/lib/responses"
	"github.com/satstacker/satstacker.go/lib/service"
)

// AuthController : AuthController struct
type AuthController struct {
	svc *service.SatstackerService
}

func NewAuthController(svc *service.SatstackerService) *AuthController {
	return &AuthController{svc: svc}
}

type AuthRequestBody struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

// Auth : Auth Controller
func (controller *AuthController) Auth(c echo.Context) error {
	var body AuthRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load auth request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	accessToken, err := controller.svc.GenerateToken(c.Request().Context(), body.Login, body.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}

	return c.JSON(http.StatusOK, &AuthResponseBody{AccessToken: accessToken})
}
