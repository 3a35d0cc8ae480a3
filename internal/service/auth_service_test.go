package service

import (
	"testing"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	db := newTestDB(t)
	return NewAuthService(repository.NewUserRepository(db), testConfig())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Register("Sam", "sam@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	assert.Equal(t, model.Candidate, user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.Password)

	_, err = svc.Register("Sam", "sam@example.com", "hunter2hunter2", "")
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	token, loggedIn, err := svc.Login("sam@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := util.ParseJWT(token, testConfig().JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Candidate, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	_, err := svc.Register("Sam", "sam@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	_, _, err = svc.Login("sam@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestSetRole(t *testing.T) {
	svc := newAuthService(t)
	_, err := svc.Register("Sam", "sam@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	promoted, err := svc.SetRole("sam@example.com", model.Admin)
	require.NoError(t, err)
	assert.Equal(t, model.Admin, promoted.Role)

	stored, err := svc.GetUserByEmail("sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.Admin, stored.Role)

	_, err = svc.SetRole("ghost@example.com", model.Admin)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
