package grpc

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Claims are carried by every session token.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessions creates a session issuer signing with secret.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for username, returning it with its expiry.
func (s *Sessions) Issue(username string) (string, time.Time, error) {
	issued := s.now()
	expires := issued.Add(s.ttl)
	claims := &Claims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			Subject:   username,
			IssuedAt:  issued.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

// Verify parses a token and returns its claims when the signature and expiry hold.
func (s *Sessions) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Username == "" {
		return nil, errors.New("invalid session")
	}
	return claims, nil
}
