package infrastructure

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// PlaceholderVerifier accepts any non-empty token and derives a stable user
// ID from it. It stands in for a real identity provider.
type PlaceholderVerifier struct{}

// NewPlaceholderVerifier creates a verifier that trusts every token
func NewPlaceholderVerifier() *PlaceholderVerifier {
	return &PlaceholderVerifier{}
}

func (v *PlaceholderVerifier) Verify(_ context.Context, token string) (*domain.UserIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.NewError(domain.ErrKindAuth, "verify token", domain.ErrMissingToken)
	}
	sum := sha256.Sum256([]byte(token))
	return &domain.UserIdentity{ID: "user_" + hex.EncodeToString(sum[:8])}, nil
}

// StaticTokenVerifier accepts only tokens listed in configuration
type StaticTokenVerifier struct {
	entries []domain.TokenEntry
}

// NewStaticTokenVerifier creates a verifier backed by a fixed token table
func NewStaticTokenVerifier(entries []domain.TokenEntry) *StaticTokenVerifier {
	return &StaticTokenVerifier{entries: entries}
}

func (v *StaticTokenVerifier) Verify(_ context.Context, token string) (*domain.UserIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.NewError(domain.ErrKindAuth, "verify token", domain.ErrMissingToken)
	}
	for _, e := range v.entries {
		if subtle.ConstantTimeCompare([]byte(e.Token), []byte(token)) == 1 {
			id := e.UserID
			if id == "" {
				id = e.Name
			}
			return &domain.UserIdentity{ID: id, Name: e.Name}, nil
		}
	}
	return nil, domain.NewError(domain.ErrKindAuth, "verify token", domain.ErrInvalidToken)
}

// NewCredentialVerifier picks the static verifier when tokens are configured
func NewCredentialVerifier(cfg domain.AuthConfig) domain.CredentialVerifier {
	if len(cfg.Tokens) > 0 {
		return NewStaticTokenVerifier(cfg.Tokens)
	}
	return NewPlaceholderVerifier()
}
