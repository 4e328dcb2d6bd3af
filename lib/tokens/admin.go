package tokens

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminTokenMiddleware guards operational endpoints (aggregate repair)
// behind a static bearer token, separate from user JWTs. An empty
// token yields a passthrough; the admin routes are only registered
// when a token is configured.
func AdminTokenMiddleware(token string) echo.MiddlewareFunc {
	if token == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return middleware.KeyAuth(func(auth string, c echo.Context) (bool, error) {
		return auth == token, nil
	})
}
