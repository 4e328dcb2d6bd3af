package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/lib/responses"
	"github.com/satstacker/satstacker.go/lib/service"
)

// VerifyInvoiceController : Verify invoice controller struct
type VerifyInvoiceController struct {
	svc *service.SatstackerService
}

func NewVerifyInvoiceController(svc *service.SatstackerService) *VerifyInvoiceController {
	return &VerifyInvoiceController{svc: svc}
}

type VerifyInvoiceRequestBody struct {
	PaymentHash string `json:"paymentHash"`
	Invoice     string `json:"invoice"`
}

type VerifyInvoiceResponseBody struct {
	Settled       bool   `json:"settled"`
	AmountPaidSat int64  `json:"amount_paid_sat"`
	Message       string `json:"message,omitempty"`
}

func (controller *VerifyInvoiceController) VerifyInvoice(c echo.Context) error {
	var body VerifyInvoiceRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load verify invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if body.PaymentHash == "" && body.Invoice == "" {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	result, err := controller.svc.CheckSettlement(c.Request().Context(), body.PaymentHash, body.Invoice)
	if err != nil {
		c.Logger().Errorf("Failed to verify invoice: payment_hash:%s error:%v", body.PaymentHash, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &VerifyInvoiceResponseBody{
		Settled:       result.Settled,
		AmountPaidSat: result.AmountPaidSat,
		Message:       result.Message,
	})
}
