package service

import (
	"context"
	"testing"

	"cardioalert/internal/apperror"
	"cardioalert/internal/models"
	"cardioalert/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, "Asha", " Asha@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", reg.User.Email)
	assert.Equal(t, models.RoleUser, reg.User.Role)

	claims, err := utils.ValidateAccessToken(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	_, err = f.auth.Register(ctx, "Asha", "asha@example.com", "secret1")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.auth.Login(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := f.auth.Login(ctx, "ASHA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	_, err := f.auth.Register(context.Background(), "x", "", "secret1")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = f.auth.Register(context.Background(), "x", "x@example.com", "123")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, "Ravi", "ravi@example.com", "secret1")
	require.NoError(t, err)

	access, err := f.auth.RefreshAccessToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	require.NoError(t, f.auth.Logout(ctx, reg.RefreshToken))
	_, err = f.auth.RefreshAccessToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocationAndFCMToken(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, "Meera", "meera@example.com", "secret1")
	require.NoError(t, err)

	assert.ErrorIs(t, f.auth.UpdateLocation(ctx, reg.User.ID, 100, 0), apperror.ErrValidation)
	require.NoError(t, f.auth.UpdateLocation(ctx, reg.User.ID, patientLat, patientLon))
	assert.ErrorIs(t, f.auth.UpdateFCMToken(ctx, reg.User.ID, "  "), apperror.ErrValidation)
	require.NoError(t, f.auth.UpdateFCMToken(ctx, reg.User.ID, "device-token"))

	me, err := f.auth.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, me.LastLatitude)
	assert.Equal(t, patientLat, *me.LastLatitude)
	require.NotNil(t, me.FCMToken)
	assert.Equal(t, "device-token", *me.FCMToken)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	require.NoError(t, f.auth.EnsureAdmin(ctx, "admin@example.com", "adminpass"))
	require.NoError(t, f.auth.EnsureAdmin(ctx, "admin@example.com", "adminpass"))

	login, err := f.auth.Login(ctx, "admin@example.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, login.User.Role)
}
