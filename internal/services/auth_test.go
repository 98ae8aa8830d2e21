package services

import (
	"context"
	"testing"

	"carmarket-backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newMemUsers(), jwt.NewJWTUtil("test-secret", "1h"))
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:     "Buyer@Example.ie",
		Password:  "correct-horse",
		FirstName: "Sam",
		LastName:  "Byrne",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.ie", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	_, err = svc.Register(ctx, &RegisterRequest{Email: "buyer@example.ie", Password: "another-one", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, &LoginRequest{Email: "buyer@example.ie", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "buyer@example.ie", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.ie", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfileAndPhone(t *testing.T) {
	svc := NewAuthService(newMemUsers(), jwt.NewJWTUtil("test-secret", "1h"))
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{Email: "s@e.ie", Password: "password1", FirstName: "S", LastName: "E"})
	require.NoError(t, err)

	user, err := svc.UpdatePhone(ctx, registered.User.ID, "+353871234567")
	require.NoError(t, err)
	assert.Equal(t, "+353871234567", user.PhoneNumber)

	profile, err := svc.GetProfile(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "+353871234567", profile.PhoneNumber)

	_, err = svc.GetProfile(ctx, "000000000000000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
