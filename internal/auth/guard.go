package auth

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrIdentityMismatch = errors.New("identity mismatch")
)

const bearerPrefix = "Bearer "

// CredentialVerifier is the part of Verifier the guard depends on.
type CredentialVerifier interface {
	Verify(token string) (string, error)
}

// Guard authorizes requests from their Authorization header.
type Guard struct {
	verifier CredentialVerifier
}

func NewGuard(verifier CredentialVerifier) *Guard {
	return &Guard{verifier: verifier}
}

// Authorize verifies the header and, when claimedUserID is non-empty, that
// it matches the token subject. It has no side effects.
func (g *Guard) Authorize(header, claimedUserID string) (string, error) {
	subject, err := g.Authenticate(header)
	if err != nil {
		return "", err
	}
	if err := CheckClaim(subject, claimedUserID); err != nil {
		return "", err
	}
	return subject, nil
}

// Authenticate runs the header and credential checks only.
func (g *Guard) Authenticate(header string) (string, error) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthenticated
	}

	subject, err := g.verifier.Verify(token)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return subject, nil
}

// CheckClaim rejects a payload user id that differs from the authenticated subject.
// An empty claim is accepted.
func CheckClaim(subject, claimedUserID string) error {
	if claimedUserID != "" && claimedUserID != subject {
		return ErrIdentityMismatch
	}
	return nil
}
