package application

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/infrastructure/adapter"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Signup(ctx, &SignupRequest{Email: "Lan@Example.com", Name: "Lan", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "lan@example.com", user.Email)
	assert.Equal(t, string(domain.RoleUser), user.Role)
	assert.True(t, user.Coin.IsZero())

	// 只保存哈希
	stored, err := env.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "s3cret")

	res, err := env.users.Login(ctx, &LoginRequest{Email: "LAN@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)

	claims := &adapter.Claims{}
	token, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "lan@example.com", claims.Email)
}

func TestSignup_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Signup(ctx, &SignupRequest{Email: "lan@example.com", Name: "Lan"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.Signup(ctx, &SignupRequest{Email: "not-an-email", Name: "Lan", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.Signup(ctx, &SignupRequest{Email: "lan@example.com", Name: "Lan", Password: "pw"})
	require.NoError(t, err)
	_, err = env.users.Signup(ctx, &SignupRequest{Email: "LAN@example.com", Name: "Other", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.users.Signup(ctx, &SignupRequest{Email: "lan@example.com", Name: "Lan", Password: "right"})
	require.NoError(t, err)

	_, err = env.users.Login(ctx, &LoginRequest{Email: "lan@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = env.users.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "right"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEditUser_PasswordAndRoleOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, err := env.users.Signup(ctx, &SignupRequest{Email: "lan@example.com", Name: "Lan", Password: "old"})
	require.NoError(t, err)

	pw, role := "new", "admin"
	edited, err := env.users.Edit(ctx, user.ID, &EditUserRequest{Password: &pw, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "admin", edited.Role)
	assert.Equal(t, "Lan", edited.Name)

	_, err = env.users.Login(ctx, &LoginRequest{Email: "lan@example.com", Password: "old"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = env.users.Login(ctx, &LoginRequest{Email: "lan@example.com", Password: "new"})
	assert.NoError(t, err)

	bad := "root"
	_, err = env.users.Edit(ctx, user.ID, &EditUserRequest{Role: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPasswordOverBcryptLimitIsInvalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	long := strings.Repeat("a", domain.MaxPasswordBytes+1)

	_, err := env.users.Signup(ctx, &SignupRequest{Email: "lan@example.com", Name: "Lan", Password: long})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	// 恰好 72 字节仍然可用
	user, err := env.users.Signup(ctx, &SignupRequest{Email: "lan@example.com", Name: "Lan", Password: long[:domain.MaxPasswordBytes]})
	require.NoError(t, err)

	_, err = env.users.Edit(ctx, user.ID, &EditUserRequest{Password: &long})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.Login(ctx, &LoginRequest{Email: "lan@example.com", Password: long[:domain.MaxPasswordBytes]})
	assert.NoError(t, err)
}

func TestListAndDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedUser(t, "a@example.com", 0)
	env.seedUser(t, "b@example.com", 0)

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, env.users.Delete(ctx, a.ID))
	_, err = env.users.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, env.users.Delete(ctx, a.ID), domain.ErrNotFound)
}
