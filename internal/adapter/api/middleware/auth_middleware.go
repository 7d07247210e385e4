package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"foodshare/internal/infrastructure/identity"
	"foodshare/pkg/errors"
	"foodshare/pkg/logger"
	"foodshare/pkg/response"
)

const (
	ContextUID   = "uid"
	ContextEmail = "email"
)

type AuthMiddleware struct {
	resolver identity.Resolver
}

func NewAuthMiddleware(resolver identity.Resolver) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
	}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := BearerToken(c)
		if !ok {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		id, err := m.resolver.Resolve(c.Request().Context(), token)
		if err != nil {
			logger.Debug("rejected token from %s: %v", c.RealIP(), err)
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		setIdentity(c, id)
		return next(c)
	}
}

// Identify attaches the caller's identity when a valid token is present and
// lets anonymous requests through otherwise.
func (m *AuthMiddleware) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := BearerToken(c)
		if !ok {
			return next(c)
		}

		if id, err := m.resolver.Resolve(c.Request().Context(), token); err == nil {
			setIdentity(c, id)
		}
		return next(c)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func setIdentity(c echo.Context, id *identity.Identity) {
	c.Set(ContextUID, id.UID)
	c.Set(ContextEmail, id.Email)
}
