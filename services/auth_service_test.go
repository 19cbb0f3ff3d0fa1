package services

import (
	"testing"
	"time"

	"prediction-league/models"

	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T, adminPassword string) (*AuthService, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
	return NewAuthService(adminPassword, "test-secret", time.Hour, clk), clk
}

func TestAuthService_AdminLogin(t *testing.T) {
	auth, _ := newTestAuth(t, "hunter2")
	assert.True(t, auth.HasAdminPassword())

	token, err := auth.AdminLogin("hunter2")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.NotEmpty(t, claims.ID)

	_, err = auth.AdminLogin("wrong")
	assert.ErrorIs(t, err, models.ErrInvalidPassword)

	_, err = auth.AdminLogin("")
	assert.True(t, models.IsValidationError(err))
}

func TestAuthService_NoAdminPassword(t *testing.T) {
	auth, _ := newTestAuth(t, "")
	assert.False(t, auth.HasAdminPassword())
	assert.ErrorIs(t, auth.CheckAdminPassword("anything"), models.ErrAdminUnavailable)
}

func TestAuthService_TokenExpiry(t *testing.T) {
	auth, clk := newTestAuth(t, "hunter2")
	token, err := auth.AdminLogin("hunter2")
	require.NoError(t, err)

	clk.Add(59 * time.Minute)
	_, err = auth.ValidateToken(token)
	assert.NoError(t, err)

	clk.Add(2 * time.Minute)
	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	auth, _ := newTestAuth(t, "hunter2")
	other := NewAuthService("hunter2", "another-secret", time.Hour, clock.New())

	token, err := other.AdminLogin("hunter2")
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	assert.Error(t, err)

	_, err = auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthService_PlayerLogin(t *testing.T) {
	auth, _ := newTestAuth(t, "hunter2")
	hashed, err := HashPassword("pw1234")
	require.NoError(t, err)

	players := map[string]models.Player{
		"ann@x.com":    {Password: hashed, Name: "Ann"},
		"legacy@x.com": {Password: "plain", Name: ""},
	}

	token, name, err := auth.PlayerLogin(players, " Ann@X.com ", "pw1234")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
	assert.Equal(t, RolePlayer, claims.Role)
	assert.Equal(t, "ann@x.com", claims.Username)

	_, name, err = auth.PlayerLogin(players, "legacy@x.com", "plain")
	require.NoError(t, err)
	assert.Equal(t, "legacy@x.com", name)

	_, _, err = auth.PlayerLogin(players, "ann@x.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidPassword)
	_, _, err = auth.PlayerLogin(players, "nobody@x.com", "pw1234")
	assert.ErrorIs(t, err, models.ErrInvalidPassword)
	_, _, err = auth.PlayerLogin(players, "ann@x.com", "")
	assert.True(t, models.IsValidationError(err))
}

func TestCheckPassword(t *testing.T) {
	hashed, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, isBcryptHash(hashed))

	assert.True(t, CheckPassword(hashed, "secret"))
	assert.False(t, CheckPassword(hashed, "Secret"))
	assert.True(t, CheckPassword("plain", "plain"))
	assert.False(t, CheckPassword("plain", "other"))
	assert.False(t, CheckPassword("", ""))
}
