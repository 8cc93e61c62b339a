// Package middleware provides the HTTP middleware stack.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailpilot/core/domain"
	"mailpilot/core/service/auth"
	"mailpilot/pkg/apperr"
	"mailpilot/pkg/logger"
)

// userKey is the fiber locals key the authenticated user is stored under.
const userKey = "user"

// BearerAuth validates the bearer token on every request and loads the
// authenticated user into locals. Absence or invalidity yields 401 with a
// Bearer challenge header.
func BearerAuth(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		var tokenString string
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return challenge(c, "missing authorization")
		}

		user, err := authService.Authenticate(c.Context(), tokenString)
		if err != nil {
			logger.WithError(err).Debug("bearer authentication failed")
			return challenge(c, "could not validate credentials")
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

func challenge(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return apperr.Unauthenticated(message)
}

// CurrentUser extracts the authenticated user from locals.
func CurrentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := c.Locals(userKey).(*domain.User)
	if !ok || user == nil {
		return nil, apperr.Unauthenticated("")
	}
	return user, nil
}
