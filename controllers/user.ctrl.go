package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/satstacker/satstacker.go/lib/responses"
	"github.com/satstacker/satstacker.go/lib/service"
)

// UserController : User settings controller struct
type UserController struct {
	svc *service.SatstackerService
}

func NewUserController(svc *service.SatstackerService) *UserController {
	return &UserController{svc: svc}
}

type UserResponseBody struct {
	ID               string `json:"id"`
	Login            string `json:"login"`
	Nickname         string `json:"nickname"`
	LightningAddress string `json:"lightning_address"`
	NostrPubkey      string `json:"nostr_pubkey"`
	WalletConnected  bool   `json:"wallet_connected"`
	TotalSatsEarned  int64  `json:"total_sats_earned"`
}

type UpdateUserRequestBody struct {
	Nickname         string `json:"nickname"`
	LightningAddress string `json:"lightning_address"`
	NostrPubkey      string `json:"nostr_pubkey"`
	NostrSecret      string `json:"nostr_secret"`
	NWCUri           string `json:"nwc_uri"`
}

func (controller *UserController) GetMe(c echo.Context) error {
	userId := c.Get("UserID").(string)
	user, err := controller.svc.FindUser(c.Request().Context(), userId)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}
	return c.JSON(http.StatusOK, userResponse(user))
}

func (controller *UserController) UpdateMe(c echo.Context) error {
	userId := c.Get("UserID").(string)
	var body UpdateUserRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, err := controller.svc.UpdateUserSettings(c.Request().Context(), userId, service.UserSettings{
		Nickname:         body.Nickname,
		LightningAddress: body.LightningAddress,
		NostrPubkey:      body.NostrPubkey,
		NostrSecret:      body.NostrSecret,
		NWCUri:           body.NWCUri,
	})
	if err != nil {
		c.Logger().Errorf("Failed to update user settings: user_id:%s error:%v", userId, err)
		return c.JSON(http.StatusInternalServerError, responses.StorageError)
	}
	return c.JSON(http.StatusOK, userResponse(user))
}

// RecomputeEarnedSats repairs a user's earned-sats aggregate from the
// zap ledger. Admin only.
func (controller *UserController) RecomputeEarnedSats(c echo.Context) error {
	userId := c.Param("user")
	total, err := controller.svc.RecomputeEarnedSats(c.Request().Context(), userId)
	if err != nil {
		c.Logger().Errorf("Failed to recompute earned sats: user_id:%s error:%v", userId, err)
		return c.JSON(http.StatusInternalServerError, responses.StorageError)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userId, "total_sats_earned": total})
}

func userResponse(user *models.User) *UserResponseBody {
	return &UserResponseBody{
		ID:               user.ID,
		Login:            user.Login,
		Nickname:         user.Nickname,
		LightningAddress: user.LightningAddress,
		NostrPubkey:      user.NostrPubkey,
		WalletConnected:  user.NWCUri != "",
		TotalSatsEarned:  user.TotalSatsEarned,
	}
}
