package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/lib/responses"
	"github.com/satstacker/satstacker.go/lib/service"
)

// CreateUserController : Create user controller struct
type CreateUserController struct {
	svc *service.SatstackerService
}

func NewCreateUserController(svc *service.SatstackerService) *CreateUserController {
	return &CreateUserController{svc: svc}
}

type CreateUserRequestBody struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname"`
}

type CreateUserResponseBody struct {
	ID       string `json:"id"`
	Login    string `json:"login"`
	Nickname string `json:"nickname"`
}

func (controller *CreateUserController) CreateUser(c echo.Context) error {
	var body CreateUserRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create user request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, err := controller.svc.CreateUser(c.Request().Context(), body.Login, body.Password, body.Nickname)
	if err != nil {
		c.Logger().Errorf("Failed to create user: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	return c.JSON(http.StatusOK, &CreateUserResponseBody{
		ID:       user.ID,
		Login:    user.Login,
		Nickname: user.Nickname,
	})
}
