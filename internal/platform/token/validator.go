// Package token validates the HMAC-signed access tokens issued by the main
// application. Token issuance lives upstream; this service only needs to read
// identity and role claims for admission keying.
package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	authmw "streamgate/pkg/platform/middleware/auth"
)

// Validator verifies HS256 tokens with a shared secret.
type Validator struct {
	secret []byte
}

// NewValidator creates a Validator from the shared signing key.
func NewValidator(signingKey string) *Validator {
	return &Validator{secret: []byte(signingKey)}
}

type accessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a token, returning its identity claims.
func (v *Validator) ValidateToken(tokenString string) (*authmw.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token missing subject")
	}

	return &authmw.Claims{
		UserID: claims.Subject,
		Role:   claims.Role,
	}, nil
}
