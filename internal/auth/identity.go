package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/shortlink/internal/shortlink"
)

// MetadataKey marks a huma operation as requiring an authenticated owner.
const MetadataKey = "requireOwner"

// ErrNoIdentity reports a missing or unusable bearer token.
var ErrNoIdentity = errors.New("no authenticated identity")

// Verifier extracts the opaque owner identity from tokens issued by the
// authentication collaborator. The subject claim is the owner id; nothing
// else about the user is modeled here.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for HS256 tokens signed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// OwnerFromToken parses and verifies a bearer token and returns its subject.
func (v *Verifier) OwnerFromToken(tokenString string) (shortlink.OwnerID, error) {
	if tokenString == "" {
		return "", ErrNoIdentity
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrNoIdentity
	}

	return shortlink.OwnerID(subject), nil
}

type ownerKey struct{}

// ContextWithOwner stores the authenticated owner in the context.
func ContextWithOwner(ctx context.Context, owner shortlink.OwnerID) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the authenticated owner, or ErrNoIdentity when the
// request never passed identity extraction.
func OwnerFromContext(ctx context.Context) (shortlink.OwnerID, error) {
	owner, ok := ctx.Value(ownerKey{}).(shortlink.OwnerID)
	if !ok || owner == "" {
		return "", ErrNoIdentity
	}

	return owner, nil
}
