package tokens

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func runMiddleware(t *testing.T, authorization string) (userId interface{}, err error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v2/users/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Middleware(testSecret)(func(c echo.Context) error {
		userId = c.Get("UserID")
		return nil
	})
	err = handler(c)
	return userId, err
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, 3600, &models.User{ID: "user-123"})
	require.NoError(t, err)

	userId, err := runMiddleware(t, "Bearer "+token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", userId)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	_, err := runMiddleware(t, "")
	assert.Error(t, err)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, -10, &models.User{ID: "user-123"})
	require.NoError(t, err)

	_, err = runMiddleware(t, "Bearer "+token)
	assert.Error(t, err)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken([]byte("other-secret"), 3600, &models.User{ID: "user-123"})
	require.NoError(t, err)

	_, err = runMiddleware(t, "Bearer "+token)
	assert.Error(t, err)
}
