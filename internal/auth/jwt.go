package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")

	// ErrTokenMalformed indicates the token is structurally invalid.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenSignatureInvalid indicates the integrity check failed.
	ErrTokenSignatureInvalid = errors.New("invalid token signature")
	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager issues and validates signed access tokens. The signing secret
// and default TTL are fixed at construction; rotating the secret means
// building a new manager, which implicitly invalidates all outstanding tokens.
type TokenManager struct {
	secret     []byte
	defaultTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenManager(secret string, defaultTTL time.Duration, issuer string) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		issuer:     issuer,
		now:        time.Now,
	}
}

// DefaultTTL reports the TTL applied when Issue is called with ttl <= 0.
func (m *TokenManager) DefaultTTL() time.Duration {
	return m.defaultTTL
}

// Issue signs a token for subject with expiry = now + ttl. A ttl <= 0 falls
// back to the manager's default.
func (m *TokenManager) Issue(subject string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrTokenMalformed
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	now := m.now()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate verifies signature integrity and expiry, returning the subject id.
// Expiry is checked against the manager's clock with zero skew tolerance: a
// token checked at any time >= its expiry fails with ErrTokenExpired, so the
// claims-level leeway machinery of the JWT library is bypassed.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrTokenMalformed
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return "", ErrTokenSignatureInvalid
		}
		return "", ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", ErrTokenMalformed
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return "", ErrTokenMalformed
	}
	if !m.now().Before(claims.ExpiresAt.Time) {
		return "", ErrTokenExpired
	}
	return claims.Subject, nil
}

// TokenFromHeader extracts the bearer token from an Authorization header.
func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
