package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// ErrInvalidCredential is returned for every rejected token, whatever the cause.
var ErrInvalidCredential = errors.New("invalid credential")

var signingMethod = jwt.SigningMethodHS256

type claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Issuer signs credentials for authenticated users.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewIssuer(secret string, ttl time.Duration, clock clockwork.Clock) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, clock: clock}
}

// Issue returns a signed token for userID valid for the configured TTL.
func (i *Issuer) Issue(userID string) (string, error) {
	now := i.clock.Now()
	token := jwt.NewWithClaims(signingMethod, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verifier checks token signature and expiry and extracts the subject.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string, clock clockwork.Clock) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}
}

// Verify returns the user id the token was issued for, or ErrInvalidCredential.
func (v *Verifier) Verify(token string) (string, error) {
	var c claims
	_, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || c.UserID == "" {
		return "", ErrInvalidCredential
	}
	return c.UserID, nil
}
