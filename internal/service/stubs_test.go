package service

import (
	"context"

	"moeum/internal/identity"
	"moeum/internal/models"
	"moeum/internal/provider"
	"moeum/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, string) (*models.Post, error)
	listFn           func(context.Context, repository.PostListParams) ([]*models.Post, int64, error)
	updateFn         func(context.Context, *models.Post) error
	deleteFn         func(context.Context, string) error
	incrementViewsFn func(context.Context, string) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, params repository.PostListParams) ([]*models.Post, int64, error) {
	return s.listFn(ctx, params)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, id string) (bool, error) {
	return s.incrementViewsFn(ctx, id)
}

// echoPostRepo stores the last created/updated post and returns it from GetByID.
func echoPostRepo() *postRepoStub {
	var last *models.Post
	stub := &postRepoStub{}
	stub.createFn = func(_ context.Context, p *models.Post) error {
		if p.ID == "" {
			p.ID = "post-1"
		}
		last = p
		return nil
	}
	stub.updateFn = func(_ context.Context, p *models.Post) error {
		last = p
		return nil
	}
	stub.getByIDFn = func(_ context.Context, _ string) (*models.Post, error) {
		return last, nil
	}
	stub.deleteFn = func(_ context.Context, _ string) error { return nil }
	stub.listFn = func(_ context.Context, _ repository.PostListParams) ([]*models.Post, int64, error) {
		return nil, 0, nil
	}
	stub.incrementViewsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	return stub
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, string) (*models.Comment, error)
	listByPostFn func(context.Context, string) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, string) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByIDFn func(context.Context, string) (*models.Profile, error)
	createFn  func(context.Context, *models.Profile) error
	updateFn  func(context.Context, string, map[string]any) (*models.Profile, error)
}

func (s *profileRepoStub) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}
func (s *profileRepoStub) Update(ctx context.Context, id string, fields map[string]any) (*models.Profile, error) {
	return s.updateFn(ctx, id, fields)
}

// memoryDirectory is an in-memory identity.Directory.
type memoryDirectory struct {
	users map[string]*identity.User
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: map[string]*identity.User{}}
}

func (d *memoryDirectory) GetUser(_ context.Context, uid string) (*identity.User, error) {
	if u, ok := d.users[uid]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, identity.ErrUserNotFound
}

func (d *memoryDirectory) GetUserByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range d.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (d *memoryDirectory) CreateUser(_ context.Context, user *identity.User) error {
	copied := *user
	d.users[user.UID] = &copied
	return nil
}

func (d *memoryDirectory) UpdateUser(_ context.Context, uid string, update identity.Update) error {
	u, ok := d.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.EmailVerified != nil {
		u.EmailVerified = *update.EmailVerified
	}
	if update.DisplayName != nil {
		u.DisplayName = *update.DisplayName
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	return nil
}

// providerStub returns a fixed account or error from Exchange.
type providerStub struct {
	name    string
	account *provider.Account
	err     error
}

func (p *providerStub) Name() string { return p.name }
func (p *providerStub) Exchange(_ context.Context, _, _ string) (*provider.Account, error) {
	if p.err != nil {
		return nil, p.err
	}
	copied := *p.account
	return &copied, nil
}

// minterStub records the claims it was asked to sign.
type minterStub struct {
	lastUser   *identity.User
	lastClaims map[string]any
}

func (m *minterStub) IssueCustomToken(user *identity.User, claims map[string]any) (string, error) {
	m.lastUser = user
	m.lastClaims = claims
	return "signed-token", nil
}
