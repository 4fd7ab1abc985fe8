package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "contactbook/internal/domain/errors"
)

// Kind tags what a token may be used for. Decode does not enforce it; the
// caller checks the kind it expects.
type Kind string

const (
	KindAccess      Kind = "access"
	KindRefresh     Kind = "refresh"
	KindEmailVerify Kind = "email-verify"
)

type Claims struct {
	TokenType Kind `json:"token_type"`
	jwt.RegisteredClaims
}

// Codec issues and validates HS256-signed tokens with a shared secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

func (c *Codec) Issue(subject string, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens unique even when two are issued within the
			// same second, so rotation always produces a fresh value.
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign token")
	}
	return signed, nil
}

// Decode verifies signature and expiry only. A wrong token kind is not an
// error here; a bad signature, malformed structure, or expired token is.
func (c *Codec) Decode(raw string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithIssuedAt(), jwt.WithExpirationRequired())

	if err != nil || !parsed.Valid {
		return Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Claims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}
