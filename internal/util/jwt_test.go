package util

import (
	"testing"
	"time"

	"exam_proctor_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Name: "Sam", Email: "sam@example.com", Role: model.Admin}
	user.ID = 42

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Admin, claims.Role)
	assert.Equal(t, "sam@example.com", claims.Email)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Email: "sam@example.com"}
	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	user := &model.User{Email: "sam@example.com"}
	token, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}
