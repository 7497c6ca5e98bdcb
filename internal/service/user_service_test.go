package service

import (
	"context"
	"testing"
	"time"

	"salesledger/internal/model"
	"salesledger/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

func newUserService(t *testing.T) (*userService, *fixture) {
	t.Helper()
	f := newFixture(t)
	svc := NewUserService(f.users, TokenSettings{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, zap.NewNop()).(*userService)
	svc.now = func() time.Time { return f.current }
	return svc, f
}

func TestBaseUsername(t *testing.T) {
	assert.Equal(t, "ana.souza", baseUsername("Ana.Souza@Example.com"))
	assert.Equal(t, "joao", baseUsername("jo+ao@example.com"))
	assert.Equal(t, "user", baseUsername("+++@example.com"))
}

func TestRegister_UsernamesAndValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ana", first.Username)

	second, err := svc.Register(ctx, RegisterRequest{Name: "Ana B", Email: "ana@other.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ana1", second.Username)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Dup", Email: " ANA@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	cases := map[string]RegisterRequest{
		"missing name":   {Email: "x@example.com", Password: "secret1", ConfirmPassword: "secret1"},
		"bad email":      {Name: "X", Email: "nope", Password: "secret1", ConfirmPassword: "secret1"},
		"short password": {Name: "X", Email: "x@example.com", Password: "abc", ConfirmPassword: "abc"},
		"mismatch":       {Name: "X", Email: "x@example.com", Password: "secret1", ConfirmPassword: "secret2"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, req)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestLogin_IssuesTokens(t *testing.T) {
	svc, f := newUserService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = svc.Login(ctx, LoginUserRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	// sign the token at the real time so jwt validation accepts exp
	f.current = time.Now()
	tokens, err := svc.Login(ctx, LoginUserRequest{Email: "ANA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), tokens.ExpiresIn)
	assert.NotEmpty(t, tokens.RefreshToken)

	parsed, err := jwt.Parse(tokens.Token, func(*jwt.Token) (interface{}, error) { return testSecret, nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])

	me, err := svc.GetMe(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)
}

func TestRefreshToken_RotatesAndExpires(t *testing.T) {
	svc, f := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	tokens, err := svc.Login(ctx, LoginUserRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized, "a used refresh token cannot be replayed")

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: rotated.RefreshToken})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	stale, err := svc.Login(ctx, LoginUserRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	f.current = f.current.Add(25 * time.Hour)
	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: stale.RefreshToken})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	var left int64
	require.NoError(t, f.db.Model(&model.RefreshToken{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestListIDs(t *testing.T) {
	f := newFixture(t)
	a := f.owner(t, "a@example.com")
	b := f.owner(t, "b@example.com")

	ids, err := f.users.ListIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
}
