// Package provider implements OAuth code exchange and profile retrieval for
// the supported federated login providers.
package provider

import (
	"context"
	"errors"
)

// ErrProviderDenied is returned when the provider rejects the authorization
// code or the upstream profile call fails.
var ErrProviderDenied = errors.New("provider rejected the authorization code")

// Account is the normalized profile a provider returns after a successful
// code exchange.
type Account struct {
	// ProviderID is the provider's stable identifier for the account.
	ProviderID string
	Email      string
	// EmailVerified reports whether the provider vouches for the email.
	EmailVerified bool
	DisplayName   string
	AvatarURL     string
}

// Provider exchanges an authorization code for the provider's account profile.
type Provider interface {
	// Name returns the provider slug ("kakao", "naver").
	Name() string
	// Exchange trades the authorization code for tokens and fetches the
	// account profile. state is forwarded to providers that require it.
	Exchange(ctx context.Context, code, state string) (*Account, error)
}
