// Package middleware provides the middleware for the Echo instance
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mytradeapp/momentumapi/internal/config"
	"github.com/mytradeapp/momentumapi/pkg/utils/response"
)

// AuthMiddleware guards routes with the configured API token
func AuthMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return response.ErrorResponse(c, http.StatusUnauthorized, "AuthorizationException", "Missing Authorization header")
			}

			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer"))
			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AuthToken)) != 1 {
				return response.ErrorResponse(c, http.StatusUnauthorized, "AuthorizationException", "Invalid token")
			}

			return next(c)
		}
	}
}
