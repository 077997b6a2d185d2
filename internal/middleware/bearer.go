package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireBearer returns an Echo middleware that extracts the raw token
// from the Authorization header and stores it in the request context
// under "token". It rejects requests without a bearer token outright;
// decoding and role checks happen inside the services so that every
// privileged operation passes the same gate regardless of transport.
func RequireBearer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			c.Set("token", strings.TrimPrefix(auth, "Bearer "))
			return next(c)
		}
	}
}
