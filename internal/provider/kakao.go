package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"moeum/internal/middleware"
)

const (
	kakaoTokenURL = "https://kauth.kakao.com/oauth/token"
	kakaoUserURL  = "https://kapi.kakao.com/v2/user/me"
)

type kakaoUserResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email           string `json:"email"`
		IsEmailVerified bool   `json:"is_email_verified"`
		Profile         struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// Kakao exchanges Kakao authorization codes for account profiles.
type Kakao struct {
	conf    *oauth2.Config
	userURL string
}

// NewKakao builds a Kakao provider from the registered app credentials.
func NewKakao(clientID, clientSecret, redirectURI string) *Kakao {
	return &Kakao{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  kakaoTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userURL: kakaoUserURL,
	}
}

func (k *Kakao) Name() string { return "kakao" }

// Exchange trades the authorization code for an access token and fetches the
// Kakao account profile. Kakao ignores the state parameter.
func (k *Kakao) Exchange(ctx context.Context, code, _ string) (*Account, error) {
	token, err := k.conf.Exchange(ctx, code)
	if err != nil {
		if retrieveErr, ok := err.(*oauth2.RetrieveError); ok {
			middleware.Logger.WarnContext(ctx, "Kakao token exchange rejected",
				"status", retrieveErr.Response.StatusCode,
				"body", string(retrieveErr.Body))
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderDenied, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build Kakao profile request: %w", err)
	}
	resp, err := k.conf.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Kakao profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Kakao profile endpoint returned %d", ErrProviderDenied, resp.StatusCode)
	}

	var user kakaoUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode Kakao profile: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: Kakao profile missing account id", ErrProviderDenied)
	}

	return &Account{
		ProviderID:    strconv.FormatInt(user.ID, 10),
		Email:         user.KakaoAccount.Email,
		EmailVerified: user.KakaoAccount.IsEmailVerified,
		DisplayName:   user.KakaoAccount.Profile.Nickname,
		AvatarURL:     user.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
