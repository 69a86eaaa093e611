package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"moeum/internal/cache"
	"moeum/internal/identity"
	"moeum/internal/middleware"
	"moeum/internal/models"
	"moeum/internal/observability"
	"moeum/internal/provider"
)

const stateTTL = 10 * time.Minute

// tokenMinter is the slice of identity.TokenIssuer the federation flow needs.
type tokenMinter interface {
	IssueCustomToken(user *identity.User, customClaims map[string]any) (string, error)
}

// FederatedUser is the user block returned alongside a freshly minted token.
type FederatedUser struct {
	UID           string `json:"uid"`
	DisplayName   string `json:"displayName,omitempty"`
	AvatarURL     string `json:"photoURL,omitempty"`
	Email         string `json:"email,omitempty"`
	LinkedAccount bool   `json:"isLinkedAccount,omitempty"`
}

// LoginResult carries the session token and the resolved user.
type LoginResult struct {
	Token string        `json:"token"`
	User  FederatedUser `json:"user"`
}

// LinkPolicy controls, per provider, whether a login may attach to an
// existing directory user that shares the same verified email.
type LinkPolicy struct {
	Kakao bool
	Naver bool
}

// FederationService turns provider authorization codes into sessions on the
// identity directory, creating or linking directory users as needed.
type FederationService struct {
	directory identity.Directory
	tokens    tokenMinter
	kakao     provider.Provider
	naver     provider.Provider
	linking   LinkPolicy
}

func NewFederationService(
	directory identity.Directory,
	tokens tokenMinter,
	kakao, naver provider.Provider,
	linking LinkPolicy,
) *FederationService {
	return &FederationService{
		directory: directory,
		tokens:    tokens,
		kakao:     kakao,
		naver:     naver,
		linking:   linking,
	}
}

// IssueState mints a one-time state nonce for the Naver authorization
// redirect and records it in Redis. Without Redis the nonce is still issued
// but verification degrades to accepting any value.
func (s *FederationService) IssueState(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if client := cache.GetClient(); client != nil {
		if err := client.Set(ctx, cache.StateKey(state), "1", stateTTL).Err(); err != nil {
			return "", err
		}
	}
	return state, nil
}

// verifyState consumes the nonce. States are single use.
func (s *FederationService) verifyState(ctx context.Context, state string) error {
	client := cache.GetClient()
	if client == nil {
		return nil
	}
	err := client.GetDel(ctx, cache.StateKey(state)).Err()
	if errors.Is(err, redis.Nil) {
		return models.NewValidationError("Unknown or expired state parameter")
	}
	if err != nil {
		// Redis hiccups should not lock everyone out of login.
		middleware.Logger.WarnContext(ctx, "state verification degraded", "error", err)
	}
	return nil
}

// LoginWithKakao exchanges the Kakao authorization code and provisions the
// directory user "kakao:<id>". Display name and avatar always track the
// provider profile.
func (s *FederationService) LoginWithKakao(ctx context.Context, code string) (*LoginResult, error) {
	if s.kakao == nil {
		return nil, models.NewValidationError("Kakao login is not configured")
	}

	acct, err := s.kakao.Exchange(ctx, code, "")
	if err != nil {
		observability.FederatedLogins.WithLabelValues("kakao", "failed").Inc()
		return nil, models.NewUpstreamError("Authentication failed", err)
	}

	user, linked, err := s.resolveUser(ctx, "kakao", acct, s.linking.Kakao, false)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueCustomToken(user, map[string]any{
		"provider":      "kakao",
		"kakaoId":       acct.ProviderID,
		"linkedAccount": linked,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User: FederatedUser{
			UID:           user.UID,
			DisplayName:   user.DisplayName,
			AvatarURL:     user.AvatarURL,
			LinkedAccount: linked,
		},
	}, nil
}

// LoginWithNaver exchanges the Naver authorization code. When linking is
// enabled and the provider account carries a verified email matching an
// existing directory user, the login attaches to that user instead of
// creating "naver:<id>"; linked logins only backfill profile fields that are
// still empty.
func (s *FederationService) LoginWithNaver(ctx context.Context, code, state string) (*LoginResult, error) {
	if s.naver == nil {
		return nil, models.NewValidationError("Naver login is not configured")
	}
	if err := s.verifyState(ctx, state); err != nil {
		return nil, err
	}

	acct, err := s.naver.Exchange(ctx, code, state)
	if err != nil {
		observability.FederatedLogins.WithLabelValues("naver", "failed").Inc()
		return nil, models.NewUpstreamError("Authentication failed", err)
	}

	user, linked, err := s.resolveUser(ctx, "naver", acct, s.linking.Naver, true)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueCustomToken(user, map[string]any{
		"provider":      "naver",
		"naverId":       acct.ProviderID,
		"linkedAccount": linked,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User: FederatedUser{
			UID:           user.UID,
			DisplayName:   user.DisplayName,
			AvatarURL:     user.AvatarURL,
			Email:         user.Email,
			LinkedAccount: linked,
		},
	}, nil
}

// resolveUser maps a provider account onto a directory user. Linked logins
// backfill only empty fields; provider-owned users get their display name
// and avatar overwritten on every login.
func (s *FederationService) resolveUser(
	ctx context.Context,
	providerName string,
	acct *provider.Account,
	linkByEmail bool,
	storeEmail bool,
) (*identity.User, bool, error) {
	if linkByEmail && acct.Email != "" && acct.EmailVerified {
		existing, err := s.directory.GetUserByEmail(ctx, acct.Email)
		switch {
		case err == nil:
			update := identity.Update{}
			if existing.DisplayName == "" && acct.DisplayName != "" {
				update.DisplayName = &acct.DisplayName
				existing.DisplayName = acct.DisplayName
			}
			if existing.AvatarURL == "" && acct.AvatarURL != "" {
				update.AvatarURL = &acct.AvatarURL
				existing.AvatarURL = acct.AvatarURL
			}
			if update.DisplayName != nil || update.AvatarURL != nil {
				if err := s.directory.UpdateUser(ctx, existing.UID, update); err != nil {
					return nil, false, err
				}
			}
			observability.LinkedLogins.WithLabelValues(providerName).Inc()
			observability.FederatedLogins.WithLabelValues(providerName, "linked").Inc()
			return existing, true, nil
		case !errors.Is(err, identity.ErrUserNotFound):
			return nil, false, err
		}
	}

	uid := providerName + ":" + acct.ProviderID
	user, err := s.directory.GetUser(ctx, uid)
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		user = &identity.User{
			UID:         uid,
			DisplayName: acct.DisplayName,
			AvatarURL:   acct.AvatarURL,
		}
		if storeEmail && acct.Email != "" {
			user.Email = acct.Email
			user.EmailVerified = acct.EmailVerified
		}
		if err := s.directory.CreateUser(ctx, user); err != nil {
			return nil, false, err
		}
		observability.FederatedLogins.WithLabelValues(providerName, "created").Inc()
	case err != nil:
		return nil, false, err
	default:
		if err := s.directory.UpdateUser(ctx, uid, identity.Update{
			DisplayName: &acct.DisplayName,
			AvatarURL:   &acct.AvatarURL,
		}); err != nil {
			return nil, false, err
		}
		user.DisplayName = acct.DisplayName
		user.AvatarURL = acct.AvatarURL
		observability.FederatedLogins.WithLabelValues(providerName, "updated").Inc()
	}
	return user, false, nil
}
