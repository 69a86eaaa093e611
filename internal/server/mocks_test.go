package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moeum/internal/config"
	"moeum/internal/identity"
	"moeum/internal/models"
	"moeum/internal/provider"
	"moeum/internal/repository"
	"moeum/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, params repository.PostListParams) ([]*models.Post, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProfileRepository is a mock of the ProfileRepository interface
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.Profile, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// fakeProvider returns a canned account from Exchange.
type fakeProvider struct {
	name    string
	account *provider.Account
	err     error
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Exchange(_ context.Context, _, _ string) (*provider.Account, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.account, nil
}

// memoryDirectory is an in-memory identity.Directory for handler tests.
type memoryDirectory struct {
	users map[string]*identity.User
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: map[string]*identity.User{}}
}

func (d *memoryDirectory) GetUser(_ context.Context, uid string) (*identity.User, error) {
	if u, ok := d.users[uid]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (d *memoryDirectory) GetUserByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (d *memoryDirectory) CreateUser(_ context.Context, user *identity.User) error {
	d.users[user.UID] = user
	return nil
}

func (d *memoryDirectory) UpdateUser(_ context.Context, uid string, update identity.Update) error {
	u, ok := d.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	if update.DisplayName != nil {
		u.DisplayName = *update.DisplayName
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	return nil
}

// testDeps bundles the server under test with its mocks.
type testDeps struct {
	server      *Server
	app         *fiber.App
	postRepo    *MockPostRepository
	commentRepo *MockCommentRepository
	profileRepo *MockProfileRepository
	directory   *memoryDirectory
}

func newTestServer(t *testing.T) *testDeps {
	t.Helper()

	cfg := &config.Config{
		TokenSecret:   "test_secret_for_handlers",
		TokenIssuer:   "moeum-api",
		TokenAudience: "moeum-client",
	}

	deps := &testDeps{
		postRepo:    new(MockPostRepository),
		commentRepo: new(MockCommentRepository),
		profileRepo: new(MockProfileRepository),
		directory:   newMemoryDirectory(),
	}

	s := &Server{config: cfg}
	s.tokens = identity.NewTokenIssuer(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenAudience, time.Hour)
	s.directory = deps.directory
	s.profileRepo = deps.profileRepo
	s.postRepo = deps.postRepo
	s.commentRepo = deps.commentRepo
	s.profileService = service.NewProfileService(deps.profileRepo)
	s.postService = service.NewPostService(deps.postRepo, nil)
	s.commentService = service.NewCommentService(deps.commentRepo, deps.postRepo)
	s.viewCounter = service.NewViewCounter(deps.postRepo.IncrementViews, 0)
	deps.server = s

	app := fiber.New()
	s.SetupRoutes(app)
	deps.app = app

	return deps
}

// withFederation wires a federation service over the given providers.
func (d *testDeps) withFederation(kakao, naver provider.Provider, linking service.LinkPolicy) {
	d.server.federationService = service.NewFederationService(
		d.directory, d.server.tokens, kakao, naver, linking)
}

// authHeader issues a valid bearer credential for the given subject.
func (d *testDeps) authHeader(t *testing.T, uid string) string {
	t.Helper()
	token, err := d.server.tokens.IssueCustomToken(&identity.User{UID: uid}, nil)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, auth string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
