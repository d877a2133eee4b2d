package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SecurityTokenCodec issues and validates purpose-scoped, expiring opaque
// tokens as HMAC-signed JWTs. The purpose and an optional payload travel in
// private claims; the subject and expiry use the registered ones. It
// satisfies the application layer's TokenCodec.
type SecurityTokenCodec struct {
	Secret []byte
}

func NewSecurityTokenCodec(secret string) *SecurityTokenCodec {
	return &SecurityTokenCodec{Secret: []byte(secret)}
}

type tokenClaims struct {
	Purpose string `json:"pur"`
	Payload string `json:"pld,omitempty"`
	jwt.RegisteredClaims
}

var (
	errWrongPurpose = errors.New("token purpose mismatch")
	errWrongSubject = errors.New("token subject mismatch")
)

func (c *SecurityTokenCodec) Issue(purpose, subject, payload string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Purpose: purpose,
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.Secret)
}

// Redeem validates signature, expiry, purpose and subject, returning the
// payload embedded at issue time. Callers treat every failure the same.
func (c *SecurityTokenCodec) Redeem(token, purpose, subject string) (string, error) {
	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tkn.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return "", errWrongPurpose
	}
	if claims.Subject != subject {
		return "", errWrongSubject
	}
	return claims.Payload, nil
}
