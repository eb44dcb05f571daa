package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/database/dbtest"
	"github.com/taskdesk/dto"
	"github.com/taskdesk/models"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(dbtest.New(t), "test-secret", time.Hour, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, dto.RegisterRequest{Email: "Ana@Example.com", Password: "hunter22", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, models.RoleEmployee, user.Role)
	assert.NotEqual(t, "hunter22", user.Password)

	_, err = auth.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "other1", Name: "Ana 2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	resp, err := auth.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(models.RoleEmployee), claims.Role)

	_, err = auth.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	auth := newAuthService(t)
	other := NewAuthService(nil, "another-secret", time.Hour, zap.NewNop())

	token, _, err := other.GenerateToken(models.User{ID: "u1", Email: "x@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, auth.EnsureAdmin(ctx, "admin@example.com", "changeme"))
	require.NoError(t, auth.EnsureAdmin(ctx, "admin@example.com", "changeme"))

	resp, err := auth.Login(ctx, dto.LoginRequest{Email: "admin@example.com", Password: "changeme"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestSetRole(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, dto.RegisterRequest{Email: "bo@example.com", Password: "secret1", Name: "Bo"})
	require.NoError(t, err)

	_, err = auth.SetRole(ctx, SystemActor, user.ID, models.Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	promoted, err := auth.SetRole(ctx, SystemActor, user.ID, models.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, promoted.Role)

	stored, err := auth.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, stored.Role)
}

func TestAuthenticateReloadsRole(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, dto.RegisterRequest{Email: "cy@example.com", Password: "secret1", Name: "Cy"})
	require.NoError(t, err)
	_, err = auth.SetRole(ctx, SystemActor, user.ID, models.RoleManager)
	require.NoError(t, err)

	resp, err := auth.Login(ctx, dto.LoginRequest{Email: "cy@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = auth.SetRole(ctx, SystemActor, user.ID, models.RoleEmployee)
	require.NoError(t, err)

	stale, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleManager), stale.Role)

	claims, err := auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleEmployee), claims.Role)
}

func TestAuthenticateRejectsUnknownUser(t *testing.T) {
	auth := newAuthService(t)

	token, _, err := auth.GenerateToken(models.User{ID: "00000000-0000-0000-0000-000000000001", Email: "gone@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
