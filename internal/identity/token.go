package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a bearer credential fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer mints and verifies session credentials for federated logins.
// Tokens are HS256 JWTs carrying the subject id plus display metadata and any
// provider-specific custom claims.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given signing parameters.
func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// IssueCustomToken creates a signed session credential for the given user,
// embedding the supplied custom claims alongside the user's display metadata.
func (t *TokenIssuer) IssueCustomToken(user *User, customClaims map[string]any) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.UID,
		"iss": t.issuer,
		"aud": t.audience,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	if user.Email != "" {
		claims["email"] = user.Email
		claims["email_verified"] = user.EmailVerified
	}
	if user.DisplayName != "" {
		claims["name"] = user.DisplayName
	}
	if user.AvatarURL != "" {
		claims["picture"] = user.AvatarURL
	}
	for k, v := range customClaims {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes and cryptographically verifies a bearer credential, returning
// the caller identity on success.
func (t *TokenIssuer) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != t.issuer {
		return nil, ErrInvalidToken
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != t.audience {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}

	id := &Identity{SubjectID: sub}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	}
	if picture, ok := claims["picture"].(string); ok {
		id.AvatarURL = picture
	}
	return id, nil
}
