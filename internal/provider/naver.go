package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"moeum/internal/middleware"
)

const (
	naverTokenURL = "https://nid.naver.com/oauth2.0/token"
	naverUserURL  = "https://openapi.naver.com/v1/nid/me"
)

type naverUserResponse struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Nickname     string `json:"nickname"`
		Name         string `json:"name"`
		ProfileImage string `json:"profile_image"`
	} `json:"response"`
}

// Naver exchanges Naver authorization codes for account profiles.
type Naver struct {
	conf    *oauth2.Config
	userURL string
}

// NewNaver builds a Naver provider from the registered app credentials.
func NewNaver(clientID, clientSecret, redirectURI string) *Naver {
	return &Naver{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  naverTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userURL: naverUserURL,
	}
}

func (n *Naver) Name() string { return "naver" }

// Exchange trades the authorization code for an access token and fetches the
// Naver account profile. Naver requires the state value from the original
// authorization request.
func (n *Naver) Exchange(ctx context.Context, code, state string) (*Account, error) {
	token, err := n.conf.Exchange(ctx, code,
		oauth2.SetAuthURLParam("grant_type", "authorization_code"),
		oauth2.SetAuthURLParam("state", state))
	if err != nil {
		if retrieveErr, ok := err.(*oauth2.RetrieveError); ok {
			middleware.Logger.WarnContext(ctx, "Naver token exchange rejected",
				"status", retrieveErr.Response.StatusCode,
				"body", string(retrieveErr.Body))
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderDenied, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build Naver profile request: %w", err)
	}
	resp, err := n.conf.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Naver profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Naver profile endpoint returned %d", ErrProviderDenied, resp.StatusCode)
	}

	var user naverUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode Naver profile: %w", err)
	}
	if user.ResultCode != "00" || user.Response.ID == "" {
		return nil, fmt.Errorf("%w: Naver profile call failed: %s", ErrProviderDenied, user.Message)
	}

	displayName := user.Response.Nickname
	if displayName == "" {
		displayName = user.Response.Name
	}

	return &Account{
		ProviderID: user.Response.ID,
		Email:      user.Response.Email,
		// Naver only returns emails it has verified.
		EmailVerified: user.Response.Email != "",
		DisplayName:   displayName,
		AvatarURL:     user.Response.ProfileImage,
	}, nil
}
