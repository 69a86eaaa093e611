package identity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// User is an identity provider user record. The subject id doubles as the
// primary key; for provider-created users it is "<provider>:<providerId>".
type User struct {
	UID           string    `gorm:"primaryKey;column:uid" json:"uid"`
	Email         string    `gorm:"index" json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	DisplayName   string    `json:"displayName,omitempty"`
	AvatarURL     string    `json:"photoURL,omitempty"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// TableName keeps the identity directory clearly separated from profiles.
func (User) TableName() string {
	return "identity_users"
}

// Store is a gorm-backed Directory implementation.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new identity Store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUser(ctx context.Context, uid string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *Store) UpdateUser(ctx context.Context, uid string, update Update) error {
	fields := map[string]any{}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.EmailVerified != nil {
		fields["email_verified"] = *update.EmailVerified
	}
	if update.DisplayName != nil {
		fields["display_name"] = *update.DisplayName
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if len(fields) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).Model(&User{}).Where("uid = ?", uid).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
