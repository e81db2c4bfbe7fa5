package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndValidate(t *testing.T) {
	m := NewTokenManager("test-secret-0123456789", time.Hour, "nitty")

	token, err := m.Issue("user-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := m.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", subject)
}

func TestIssueEmptySubject(t *testing.T) {
	m := NewTokenManager("test-secret-0123456789", time.Hour, "nitty")

	_, err := m.Issue("  ", time.Hour)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestIssueDefaultTTL(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("test-secret-0123456789", 30*time.Minute, "nitty")
	m.now = fixedClock(issued)

	token, err := m.Issue("user-123", 0)
	require.NoError(t, err)

	m.now = fixedClock(issued.Add(29 * time.Minute))
	_, err = m.Validate(token)
	require.NoError(t, err)

	m.now = fixedClock(issued.Add(30 * time.Minute))
	_, err = m.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateExpiryBoundary(t *testing.T) {
	// Token issued at T with TTL of 10080 minutes is valid at T+10079m and
	// expired at exactly T+10080m.
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ttl := 10080 * time.Minute

	m := NewTokenManager("test-secret-0123456789", time.Hour, "nitty")
	m.now = fixedClock(issued)

	token, err := m.Issue("user-123", ttl)
	require.NoError(t, err)

	m.now = fixedClock(issued.Add(10079 * time.Minute))
	subject, err := m.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", subject)

	m.now = fixedClock(issued.Add(10080 * time.Minute))
	_, err = m.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)

	m.now = fixedClock(issued.Add(10081 * time.Minute))
	_, err = m.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateMalformed(t *testing.T) {
	m := NewTokenManager("test-secret-0123456789", time.Hour, "nitty")

	for _, token := range []string{"", "   ", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := m.Validate(token)
		require.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one-0123456789", time.Hour, "nitty")
	validator := NewTokenManager("secret-two-0123456789", time.Hour, "nitty")

	token, err := issuer.Issue("user-123", time.Hour)
	require.NoError(t, err)

	_, err = validator.Validate(token)
	require.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestSecretRotationInvalidatesTokens(t *testing.T) {
	old := NewTokenManager("old-secret-0123456789", time.Hour, "nitty")
	token, err := old.Issue("user-123", time.Hour)
	require.NoError(t, err)

	rotated := NewTokenManager("new-secret-0123456789", time.Hour, "nitty")
	_, err = rotated.Validate(token)
	require.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	token, err = TokenFromHeader("bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	_, err = TokenFromHeader("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Basic dXNlcjpwYXNz")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Bearer")
	require.ErrorIs(t, err, ErrMissingToken)
}
