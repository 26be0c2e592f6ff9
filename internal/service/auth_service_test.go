package service

import (
	"context"
	"testing"
	"time"

	"recoverly/physio-app/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func newAuthFixture() (AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	return NewAuthService(users, testJWTSecret, time.Hour), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, "pat@example.com", "secret-password", domain.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, user.Role)
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")
	assert.False(t, user.Onboarded)

	token, loggedIn, err := svc.Login(ctx, "pat@example.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, token)

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "pat@example.com", claims.Email)
	assert.Equal(t, domain.RolePatient, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "pat@example.com", "secret-password", domain.RolePatient)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "pat@example.com", "other-password", domain.RoleDoctor)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterDoctorGetsDoctorUserType(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), "doc@example.com", "secret-password", domain.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeDoctor, user.UserType)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "pat@example.com", "secret-password", domain.RolePatient)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "pat@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestCompleteOnboarding(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, "pat@example.com", "secret-password", domain.RolePatient)
	require.NoError(t, err)

	updated, err := svc.CompleteOnboarding(ctx, user.ID, ProfileUpdate{
		FirstName: "Pat",
		LastName:  "Kim",
		Gender:    "other",
		Age:       34,
		UserType:  domain.UserTypeAthlete,
		Onboarded: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.Onboarded)
	assert.Equal(t, "Pat Kim", updated.FullName())
	assert.Equal(t, domain.UserTypeAthlete, updated.UserType)

	fetched, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Onboarded)
	assert.Equal(t, 34, fetched.Age)
}
