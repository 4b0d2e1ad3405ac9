package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer() *TokenIssuer {
	return NewTokenIssuer(JWTConfig{
		AccessSecret:  "a-secret",
		RefreshSecret: "r-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

func TestGenerateAndParse(t *testing.T) {
	iss := newIssuer()
	pair, err := iss.GeneratePair(7, "merchant")
	require.NoError(t, err)

	claims, err := iss.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "merchant", claims.Role)

	rc, err := iss.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rc.UserID)
}

func TestAccessAndRefreshAreNotInterchangeable(t *testing.T) {
	iss := newIssuer()
	pair, err := iss.GeneratePair(1, "neighbor")
	require.NoError(t, err)

	_, err = iss.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = iss.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestExpiredAccess(t *testing.T) {
	iss := newIssuer()
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := iss.GeneratePair(1, "neighbor")
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = iss.ParseRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshExpired)
}

func TestWrongSecret(t *testing.T) {
	pair, err := newIssuer().GeneratePair(1, "neighbor")
	require.NoError(t, err)

	other := NewTokenIssuer(JWTConfig{AccessSecret: "x", RefreshSecret: "y", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	_, err = other.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
