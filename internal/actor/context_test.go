package actor

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromToken(t *testing.T) {
	id := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   id.String(),
		"email": "owner@example.com",
	})

	a, err := FromToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, "owner@example.com", a.Email)
}

func TestFromTokenRejectsBadClaims(t *testing.T) {
	_, err := FromToken(nil)
	assert.Error(t, err)

	_, err = FromToken(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}))
	assert.Error(t, err)

	_, err = FromToken(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "not-a-uuid"}))
	assert.Error(t, err)
}

func TestActorIsZero(t *testing.T) {
	assert.True(t, Actor{}.IsZero())
	assert.False(t, Actor{ID: uuid.New()}.IsZero())
}
