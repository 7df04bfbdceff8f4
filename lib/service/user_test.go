package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserGeneratesCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 20, len(user.Login))
	assert.Equal(t, 20, len(user.Password))

	// the stored password is the bcrypt hash, not the plain text we returned
	stored, err := svc.FindUserByLogin(ctx, user.Login)
	require.NoError(t, err)
	assert.NotEqual(t, user.Password, stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(user.Password)))
}

func TestCreateUserWithProvidedCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.Equal(t, "secret123", user.Password)

	found, err := svc.FindUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Login)
}

func TestGenerateTokenRoundtrip(t *testing.T) {
	svc := newTestService(t)
	svc.Config.JWTSecret = []byte("test-secret")
	svc.Config.JWTAccessTokenExpiry = 3600
	svc.Config.JWTRefreshTokenExpiry = 7200
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "bob", "hunter22")
	require.NoError(t, err)

	access, refresh, err := svc.GenerateToken(ctx, user.Login, "hunter22", "")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// a refresh token buys a fresh pair
	access2, refresh2, err := svc.GenerateToken(ctx, "", "", refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)
}

func TestGenerateTokenRejectsBadPassword(t *testing.T) {
	svc := newTestService(t)
	svc.Config.JWTSecret = []byte("test-secret")
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "carol", "correct")
	require.NoError(t, err)

	_, _, err = svc.GenerateToken(ctx, "carol", "wrong", "")
	assert.Error(t, err)
}
