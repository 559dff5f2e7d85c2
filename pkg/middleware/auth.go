package middleware

import (
	"strings"

	"railway/pkg/apperr"
	"railway/pkg/models"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(token string) (models.Identity, error)
}

// Identify resolves the bearer token, if any, into the request identity.
// No header means anonymous; a bad token is rejected outright.
func Identify(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return c.Next()
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			return &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "authorization header must be a bearer token"}
		}

		id, err := a.Authenticate(strings.TrimSpace(auth[7:]))
		if err != nil {
			return err
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

// IdentityOf returns the caller of the request; anonymous when unset.
func IdentityOf(c *fiber.Ctx) models.Identity {
	id, _ := c.Locals(identityKey).(models.Identity)
	return id
}

func RequireAuth(c *fiber.Ctx) error {
	if !IdentityOf(c).Authenticated() {
		return apperr.ErrUnauthenticated
	}
	return c.Next()
}
