package adapter

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/service/market/domain"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	again, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted hashes must differ")

	assert.NoError(t, h.Compare(hash, "hunter2"))
	assert.Error(t, h.Compare(hash, "hunter3"))
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("x", domain.MaxPasswordBytes+1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestJWTIssuer(t *testing.T) {
	issuer := NewJWTIssuer("secret", "storefront", 30*time.Minute)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	user := &domain.User{ID: "u1", Email: "lan@example.com", Role: domain.RoleAdmin}
	token, exp, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), exp)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now.Add(time.Minute) }))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "storefront", claims.Issuer)
	assert.Equal(t, "admin", claims.Role)

	_, err = jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now.Add(time.Minute) }))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now.Add(time.Hour) }))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
