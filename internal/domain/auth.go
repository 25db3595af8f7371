package domain

import "context"

// UserIdentity is the caller resolved from a bearer token
type UserIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// CredentialVerifier resolves bearer tokens to identities
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*UserIdentity, error)
}
