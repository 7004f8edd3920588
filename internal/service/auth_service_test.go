package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/testutil"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	store := testutil.NewStore(t)
	auth := NewAuthService(store.Users, testSecret, time.Hour, logger.Nop())
	ctx := context.Background()

	user, err := auth.Register(ctx, "Ada", " Ada@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	token, loggedIn, err := auth.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, TokenIssuer, claims.Issuer)

	_, _, err = auth.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegisterRejects(t *testing.T) {
	store := testutil.NewStore(t)
	auth := NewAuthService(store.Users, testSecret, time.Hour, logger.Nop())
	ctx := context.Background()
	_, err := auth.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		want     apperr.Kind
	}{
		{"short password", "Bob", "bob@example.com", "short", apperr.KindValidation},
		{"missing fields", "", "", "correct horse", apperr.KindValidation},
		{"taken email", "Ada Two", "ADA@example.com", "correct horse", apperr.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.userName, tt.email, tt.password)
			requireKind(t, err, tt.want)
		})
	}
}

func TestNewAuthServicePanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(nil, "", time.Hour, logger.Nop()) })
}
