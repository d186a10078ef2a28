// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookgod/internal/platform/sec"
)

func newTokenService(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKey(key, issuer)
}

/*
TestTokenService_RoundTrip signs a token and verifies the claims survive.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t, "bookgod.app")

	token, err := service.GenerateAccessToken("user-1", "reader", string(sec.RoleAuthor), time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, sec.RoleAuthor, claims.UserRole())
}

/*
TestTokenService_Rejects covers expired, foreign-issuer and foreign-key tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	service := newTokenService(t, "bookgod.app")

	expired, err := service.GenerateAccessToken("user-1", "reader", "member", -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := newTokenService(t, "elsewhere").GenerateAccessToken("user-1", "reader", "member", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"foreign_key_and_issuer", otherIssuer},
		{"garbage", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyToken(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sec.ErrInvalidToken))
		})
	}
}

/*
TestPasswordHash verifies bcrypt hashing and comparison.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("wrong horse", hash))
}

/*
TestSecureToken checks uniqueness of generated tokens and stability of the hash.
*/
func TestSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.Len(t, sec.HashToken(first), 64)
}

/*
TestUserRole_AtLeast checks the role hierarchy.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleAuthor))
	assert.True(t, sec.RoleAuthor.AtLeast(sec.RoleAuthor))
	assert.False(t, sec.RoleMember.AtLeast(sec.RoleAuthor))
	assert.False(t, sec.UserRole("ghost").Valid())
}
