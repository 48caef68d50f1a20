package actor

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const localsKey = "actor"

var ErrNoActor = errors.New("no authenticated actor in context")

// Actor is the authenticated user on whose behalf an operation runs. Every
// service call takes one explicitly instead of reading session state.
type Actor struct {
	ID    uuid.UUID
	Email string
}

func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}

// FromToken extracts the actor from a verified JWT.
func FromToken(token *jwt.Token) (Actor, error) {
	if token == nil {
		return Actor{}, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Actor{}, errors.New("missing sub claim")
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return Actor{}, err
	}

	email, _ := claims["email"].(string)
	return Actor{ID: id, Email: email}, nil
}

// Set stores a in the request locals.
func Set(c *fiber.Ctx, a Actor) {
	c.Locals(localsKey, a)
}

// Get returns the actor placed by the actor middleware.
func Get(c *fiber.Ctx) (Actor, error) {
	a, ok := c.Locals(localsKey).(Actor)
	if !ok || a.IsZero() {
		return Actor{}, ErrNoActor
	}
	return a, nil
}
