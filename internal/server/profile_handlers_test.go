package server

import (
	"net/http"
	"strings"
	"testing"

	"moeum/internal/identity"
	"moeum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetMyProfile_CreatedOnFirstAccess(t *testing.T) {
	deps := newTestServer(t)

	token, err := deps.server.tokens.IssueCustomToken(&identity.User{
		UID:         "kakao:42",
		DisplayName: "Nori",
		AvatarURL:   "https://img.example.com/nori.png",
	}, nil)
	require.NoError(t, err)

	deps.profileRepo.On("GetByID", mock.Anything, "kakao:42").
		Return(nil, gorm.ErrRecordNotFound)
	deps.profileRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.ID == "kakao:42" && p.DisplayName == "Nori" && p.Role == models.RoleUser
	})).Return(nil)

	resp := doJSON(t, deps.app, "GET", "/api/v1/profiles/me", "", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	data := env.Data.(map[string]any)
	assert.Equal(t, "kakao:42", data["id"])
	assert.Equal(t, "Nori", data["displayName"])
	deps.profileRepo.AssertExpectations(t)
}

func TestGetMyProfile_ExistingUntouched(t *testing.T) {
	deps := newTestServer(t)
	deps.profileRepo.On("GetByID", mock.Anything, "user-1").
		Return(existingProfile("user-1"), nil)

	resp := doJSON(t, deps.app, "GET", "/api/v1/profiles/me", "",
		deps.authHeader(t, "user-1"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deps.profileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateMyProfile_OverwritesProvidedFields(t *testing.T) {
	deps := newTestServer(t)
	deps.profileRepo.On("GetByID", mock.Anything, "user-1").
		Return(existingProfile("user-1"), nil)
	deps.profileRepo.On("Update", mock.Anything, "user-1", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["display_name"] == "Renamed" && fields["bio"] == "hello"
	})).Return(&models.Profile{
		ID:          "user-1",
		DisplayName: "Renamed",
		Bio:         "hello",
		Role:        models.RoleUser,
	}, nil)

	resp := doJSON(t, deps.app, "PUT", "/api/v1/profiles/me",
		`{"displayName":"Renamed","bio":"hello"}`, deps.authHeader(t, "user-1"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	data := env.Data.(map[string]any)
	assert.Equal(t, "Renamed", data["displayName"])
	deps.profileRepo.AssertExpectations(t)
}

func TestUpdateMyProfile_DisplayNameTooLong(t *testing.T) {
	deps := newTestServer(t)
	deps.profileRepo.On("GetByID", mock.Anything, "user-1").
		Return(existingProfile("user-1"), nil)

	body := `{"displayName":"` + strings.Repeat("a", 51) + `"}`
	resp := doJSON(t, deps.app, "PUT", "/api/v1/profiles/me",
		body, deps.authHeader(t, "user-1"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	deps.profileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
