package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = time.Hour

var (
	// ErrTokenInvalid is returned for malformed tokens, bad
	// signatures, and signing-method substitution.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when the token is past its
	// expiration.
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the claim payload embedded in an access token. Email is
// the only field the authorization layer interprets.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type identityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited access
// tokens. It is stateless: tokens are never persisted and cannot be
// revoked before expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService signing with the given
// secret and the default one-hour TTL.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
}

// NewTokenServiceWithClock is NewTokenService with an injected clock,
// used by expiry tests.
func NewTokenServiceWithClock(secret string, ttl time.Duration, now func() time.Time) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a token embedding the identity with an absolute
// expiration ttl from now. It never touches storage.
func (s *TokenService) Issue(identity Identity) (string, error) {
	issued := s.now()
	claims := identityClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry and returns the embedded
// identity. The signing method is pinned to HMAC; a token claiming any
// other algorithm fails regardless of its signature.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	claims := identityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}
	if !token.Valid || strings.TrimSpace(claims.Email) == "" {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{Email: claims.Email, Name: claims.Name}, nil
}
