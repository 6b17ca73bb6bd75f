// Package jwt issues and parses the HS256 access tokens of the site.
package jwt

import (
	"time"
)

// Maker issues and parses access tokens.
type Maker interface {
	GenerateToken(username, role, userUID string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl signs tokens with a shared secret.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker returns a maker that signs with secretKey and issues tokens valid for ttl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
