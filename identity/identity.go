// Package identity describes the authenticated principal handed to the score ledger
// by an external identity provider.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// AnonymousName is used when the provider supplies no display name
const AnonymousName = "Anonymous"

// Identity is a verified principal. A nil *Identity means the caller is unauthenticated.
// Subject is the only correlation key; the other fields are optional and mutable upstream.
type Identity struct {
	Subject  string
	Name     string
	Nickname string
	Email    string
}

// DisplayName returns the provider name or AnonymousName
func (id *Identity) DisplayName() string {
	if name := strings.TrimSpace(id.Name); name != "" {
		return name
	}
	return AnonymousName
}

// Handle returns the nickname, else the local part of the email address,
// else a placeholder derived from the subject.
func (id *Identity) Handle() string {
	if nick := strings.TrimSpace(id.Nickname); nick != "" {
		return nick
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(id.Email), "@"); local != "" {
		return local
	}
	sum := sha256.Sum256([]byte(id.Subject))
	return "player-" + hex.EncodeToString(sum[:])[:8]
}

type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// WithIdentity attaches a verified identity to ctx. Transport adapters use it to carry
// the principal from middleware to handlers; the ledger takes it as an argument.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored by WithIdentity, or nil
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
