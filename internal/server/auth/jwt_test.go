package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/chatgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source; timestamps are whole seconds because
// JWT numeric dates are.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 29, 10, 0, 0, 0, time.UTC)}
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("super-secret"), time.Hour)

	for _, user := range []string{"admin", "alice", "user with spaces", "ユーザー"} {
		tok, err := svc.Issue(user)
		require.NoError(t, err)

		got, err := svc.Verify("Bearer " + tok)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	}
}

func TestIssue_EncodesClaims(t *testing.T) {
	t.Parallel()

	clock := newClock()
	svc := NewTokenService([]byte("k"), time.Hour, WithClock(clock.Now))

	tok, err := svc.Issue("admin")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	assert.Equal(t, "admin", claims.Subject)
	assert.True(t, clock.t.Equal(claims.IssuedAt.Time))
	assert.True(t, clock.t.Add(time.Hour).Equal(claims.ExpiresAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	clock := newClock()
	issuedAt := clock.t
	svc := NewTokenService([]byte("k"), time.Hour, WithClock(clock.Now))

	tok, err := svc.Issue("admin")
	require.NoError(t, err)

	valid := []time.Duration{0, time.Second, 30 * time.Minute, time.Hour - time.Second}
	for _, d := range valid {
		clock.t = issuedAt.Add(d)
		got, err := svc.Verify("Bearer " + tok)
		require.NoError(t, err, "offset %v", d)
		assert.Equal(t, "admin", got)
	}

	expired := []time.Duration{time.Hour, time.Hour + time.Second, 48 * time.Hour}
	for _, d := range expired {
		clock.t = issuedAt.Add(d)
		_, err := svc.Verify("Bearer " + tok)
		assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken, "offset %v", d)
	}
}

func TestVerify_ExpiryBoundary_SubSecondClock(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2025, 1, 29, 10, 0, 0, 700_000_000, time.UTC)}
	svc := NewTokenService([]byte("k"), time.Hour, WithClock(clock.Now))

	tok, err := svc.Issue("admin")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	issuedAt := time.Date(2025, 1, 29, 10, 0, 0, 0, time.UTC)
	require.True(t, issuedAt.Equal(claims.IssuedAt.Time))
	require.True(t, issuedAt.Add(time.Hour).Equal(claims.ExpiresAt.Time))

	valid := []time.Duration{700 * time.Millisecond, time.Hour - 500*time.Millisecond, time.Hour - time.Nanosecond}
	for _, d := range valid {
		clock.t = issuedAt.Add(d)
		_, err := svc.Verify("Bearer " + tok)
		require.NoError(t, err, "offset %v", d)
	}

	for _, d := range []time.Duration{time.Hour, time.Hour + 200*time.Millisecond} {
		clock.t = issuedAt.Add(d)
		_, err := svc.Verify("Bearer " + tok)
		assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken, "offset %v", d)
	}
}

func TestVerify_HeaderShapes(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("k"), time.Hour)
	tok, err := svc.Issue("admin")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"absent", "", common.ErrMissingCredential},
		{"only spaces", "   ", common.ErrInvalidScheme},
		{"one part", tok, common.ErrInvalidScheme},
		{"three parts", "Bearer " + tok + " extra", common.ErrInvalidScheme},
		{"basic scheme", "Basic " + tok, common.ErrInvalidScheme},
		{"garbage token", "Bearer not.a.jwt", common.ErrInvalidOrExpiredToken},
		{"lowercase scheme", "bearer " + tok, nil},
		{"uppercase scheme", "BEARER " + tok, nil},
		{"mixed case scheme", "BeArEr " + tok, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(tt.header)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, "admin", got)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsAuthError(err))
		})
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret"), time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenService([]byte("wrong-secret"), time.Hour).Verify("Bearer " + tok)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestVerify_AlgorithmMismatch(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := NewTokenService(secret, time.Hour)
	for _, tok := range []string{hs512, none} {
		_, err := svc.Verify("Bearer " + tok)
		assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenService(secret, time.Hour).Verify("Bearer " + tok)
	assert.ErrorIs(t, err, common.ErrInvalidPayload)
}

func TestVerify_MissingExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "admin",
	}}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenService(secret, time.Hour).Verify("Bearer " + tok)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
}

func TestIsAuthError(t *testing.T) {
	assert.False(t, IsAuthError(nil))
	assert.False(t, IsAuthError(common.ErrUpstreamIndex))
	assert.True(t, IsAuthError(common.ErrInvalidPayload))
}
