package middleware

import (
	"github.com/findmypaw/backend/internal/actor"
	"github.com/findmypaw/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ActorRequired turns the verified JWT left by JWTProtected into an
// actor.Actor so handlers never touch token claims themselves.
func ActorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals("user").(*jwt.Token)
		a, err := actor.FromToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		actor.Set(c, a)
		return c.Next()
	}
}
