package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session token lifetime used when none is configured.
const DefaultTokenTTL = 2 * time.Hour

// ErrInvalidToken is returned when a token fails signature, structure,
// or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity and authorization facts carried by a session token.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the claims.
func (c Claims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id < 1 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TokenIssuer mints and verifies signed, expiring session tokens.
// The signing key and TTL are fixed at construction; key rotation is not
// supported.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer constructs a TokenIssuer with the given HMAC secret and
// token lifetime. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token carrying the subject's identity and role claims.
func (t *TokenIssuer) Issue(userID int, email string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token string. It returns ErrInvalidToken
// on signature mismatch, malformed structure, wrong signing method, or
// elapsed expiry. Account liveness is not checked here; that is the
// authorization layer's concern.
func (t *TokenIssuer) Verify(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
