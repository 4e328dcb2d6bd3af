package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/lib/responses"
	"github.com/satstacker/satstacker.go/lib/service"
	qrcode "github.com/skip2/go-qrcode"
)

// InvoiceController : Invoice controller struct
type InvoiceController struct {
	svc *service.SatstackerService
}

func NewInvoiceController(svc *service.SatstackerService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type CreateInvoiceRequestBody struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Memo   string `json:"memo"`
}

type CreateInvoiceResponseBody struct {
	Invoice     string    `json:"invoice"`
	PaymentHash string    `json:"payment_hash"`
	AmountSats  int64     `json:"amount_sats"`
	QRData      string    `json:"qr_data"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (controller *InvoiceController) CreateInvoice(c echo.Context) error {
	var body CreateInvoiceRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.CreateInvoice(c.Request().Context(), body.Amount, body.Memo)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return c.JSON(http.StatusBadRequest, responses.InvalidAmountError)
		}
		c.Logger().Errorf("Failed to create invoice: amount:%d error:%v", body.Amount, err)
		return c.JSON(http.StatusInternalServerError, responses.InvoiceResolutionError)
	}

	return c.JSON(http.StatusOK, &CreateInvoiceResponseBody{
		Invoice:     invoice.PaymentRequest,
		PaymentHash: invoice.RHash,
		AmountSats:  invoice.Amount,
		QRData:      service.QRData(invoice.PaymentRequest),
		ExpiresAt:   invoice.ExpiresAt,
	})
}

// InvoiceQR renders a PNG QR code of the lightning: URI. Invoices are
// only persisted when a zap references them, so the payment request can
// also be passed back verbatim through the pr query param.
func (controller *InvoiceController) InvoiceQR(c echo.Context) error {
	paymentRequest := c.QueryParam("pr")
	if paymentRequest == "" {
		zap, err := controller.svc.FindZapByHash(c.Request().Context(), c.Param("payment_hash"))
		if err != nil {
			return c.JSON(http.StatusNotFound, responses.BadArgumentsError)
		}
		paymentRequest = zap.PaymentRequest
	}
	if paymentRequest == "" {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	png, err := qrcode.Encode(service.QRData(paymentRequest), qrcode.Medium, 256)
	if err != nil {
		c.Logger().Errorf("Failed to encode QR code: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
