package controllers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/satstacker/satstacker.go/lib/responses"
	"github.com/satstacker/satstacker.go/lib/service"
	"github.com/satstacker/satstacker.go/lnurl"
)

// ZapController : Zap controller struct
type ZapController struct {
	svc *service.SatstackerService
}

func NewZapController(svc *service.SatstackerService) *ZapController {
	return &ZapController{svc: svc}
}

type CreateZapRequestBody struct {
	PostID      string `json:"postId" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Comment     string `json:"comment"`
	PaymentHash string `json:"paymentHash"`
	Invoice     string `json:"invoice"`
}

type SendZapRequestBody struct {
	PostID    string `json:"postId"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Comment   string `json:"comment"`
}

type ZapResponseBody struct {
	ZapID   string `json:"zap_id"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount"`
	Message string `json:"message,omitempty"`
	Invoice string `json:"invoice,omitempty"`
	QRData  string `json:"qr_data,omitempty"`
}

func zapResponse(zap *models.Zap, message string) *ZapResponseBody {
	return &ZapResponseBody{
		ZapID:   zap.ID,
		Status:  zap.State,
		Amount:  zap.Amount,
		Message: message,
	}
}

// CreateZap records a zap attempt. With a payment identifier the zap is
// verified and possibly settled right away; without one an invoice is
// resolved for the post's author and handed back for the caller to pay.
func (controller *ZapController) CreateZap(c echo.Context) error {
	userId := c.Get("UserID").(string)
	var body CreateZapRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create zap request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	ctx := c.Request().Context()

	rHash := body.PaymentHash
	paymentRequest := body.Invoice
	if rHash == "" && paymentRequest == "" {
		sender, err := controller.svc.FindUser(ctx, userId)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
		}
		invoice, err := controller.svc.CreateZapInvoice(ctx, sender, body.PostID, body.Amount, body.Comment)
		if err != nil {
			return controller.zapError(c, err)
		}
		rHash = invoice.RHash
		paymentRequest = invoice.PaymentRequest
	}

	zap, err := controller.svc.RecordZap(ctx, body.PostID, userId, body.Amount, body.Comment, rHash, paymentRequest)
	if err != nil {
		return controller.zapError(c, err)
	}

	response := zapResponse(zap, "")
	if body.Invoice == "" && body.PaymentHash == "" {
		response.Invoice = paymentRequest
		response.QRData = service.QRData(paymentRequest)
	}
	return c.JSON(http.StatusOK, response)
}

// ConfirmZap is the "I've paid" path: re-check settlement and apply it.
// An unconfirmed payment is a 200 with settled=false so clients can
// poll without special-casing an error status.
func (controller *ZapController) ConfirmZap(c echo.Context) error {
	zap, err := controller.svc.ConfirmZap(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSettlementUnconfirmed) {
			return c.JSON(http.StatusOK, echo.Map{"settled": false, "zap": zapResponse(zap, "payment not settled yet; try again")})
		}
		return controller.zapError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"settled": true, "zap": zapResponse(zap, "")})
}

// SendZap is the direct flow through the sender's connected wallet.
func (controller *ZapController) SendZap(c echo.Context) error {
	userId := c.Get("UserID").(string)
	var body SendZapRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load send zap request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if body.PostID == "" && body.Recipient == "" {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	ctx := c.Request().Context()

	sender, err := controller.svc.FindUser(ctx, userId)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}
	zap, err := controller.svc.SendZap(ctx, sender, body.PostID, body.Recipient, body.Amount, body.Comment)
	if err != nil {
		return controller.zapError(c, err)
	}
	return c.JSON(http.StatusOK, zapResponse(zap, ""))
}

func (controller *ZapController) zapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, responses.InvalidAmountError)
	case errors.Is(err, service.ErrPostNotFound):
		return c.JSON(http.StatusNotFound, responses.PostNotFoundError)
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, responses.ZapNotFoundError)
	case errors.Is(err, service.ErrWalletNotConnected):
		return c.JSON(http.StatusBadRequest, responses.WalletNotConnectedError)
	case errors.Is(err, service.ErrSigningKeyRequired):
		return c.JSON(http.StatusUnauthorized, responses.SigningKeyRequiredError)
	case errors.Is(err, service.ErrRecipientNotPayable):
		return c.JSON(http.StatusBadRequest, responses.InvalidLightningAddressError)
	case errors.Is(err, lnurl.ErrInvalidAddress):
		return c.JSON(http.StatusBadRequest, responses.InvalidLightningAddressError)
	case errors.Is(err, lnurl.ErrResolution):
		return c.JSON(http.StatusInternalServerError, responses.InvoiceResolutionError)
	case errors.Is(err, service.ErrDemoInvoiceNotPayable):
		return c.JSON(http.StatusInternalServerError, responses.NodeNotConfiguredError)
	default:
		c.Logger().Errorf("Zap request failed: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
}
