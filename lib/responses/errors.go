package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var InvalidAmountError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "amount must be a positive number of sats",
	HttpStatusCode: 400,
}

var InvalidLightningAddressError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "invalid lightning address",
	HttpStatusCode: 400,
}

var InvoiceResolutionError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "failed to generate invoice",
	HttpStatusCode: 500,
}

var PostNotFoundError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "post not found",
	HttpStatusCode: 404,
}

var ZapNotFoundError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "zap not found",
	HttpStatusCode: 404,
}

var SigningKeyRequiredError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "a nostr signing key is required for this operation",
	HttpStatusCode: 401,
}

var WalletNotConnectedError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "no wallet connection configured. Add one in your settings",
	HttpStatusCode: 400,
}

var NodeNotConfiguredError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "lightning node connection not configured",
	HttpStatusCode: 500,
}

var StorageError = ErrorResponse{
	Error:          true,
	Code:           9,
	Message:        "failed to save the record. Please try again later",
	HttpStatusCode: 500,
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("UserID", c.Get("UserID"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
	} else {
		c.JSON(http.StatusInternalServerError, GeneralServerError)
	}
}
