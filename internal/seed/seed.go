// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"moeum/internal/identity"
	"moeum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options control how much demo data gets generated.
type Options struct {
	Users    int
	Posts    int
	Comments int
	Clean    bool
}

// Seed populates the database with identity users, profiles, posts, and
// comments.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.Clean {
		if err := clearData(db); err != nil {
			return err
		}
	}

	profiles, err := createProfiles(db, opts.Users)
	if err != nil {
		return err
	}
	posts, err := createPosts(db, profiles, opts.Posts)
	if err != nil {
		return err
	}
	if err := createComments(db, profiles, posts, opts.Comments); err != nil {
		return err
	}

	log.Printf("Seeded %d profiles, %d posts, %d comments", len(profiles), len(posts), opts.Comments)
	return nil
}

func clearData(db *gorm.DB) error {
	return db.Exec("TRUNCATE TABLE comments, posts, profiles, identity_users CASCADE").Error
}

// createProfiles creates a directory user plus matching profile per person.
// Roughly half come from Kakao and half from Naver, mirroring real uid shapes.
func createProfiles(db *gorm.DB, count int) ([]*models.Profile, error) {
	profiles := make([]*models.Profile, 0, count)
	for i := 0; i < count; i++ {
		providerName := "kakao"
		if i%2 == 1 {
			providerName = "naver"
		}
		uid := fmt.Sprintf("%s:%d", providerName, gofakeit.Number(100000000, 999999999))
		email := gofakeit.Email()
		name := gofakeit.Name()
		avatar := fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID())

		user := &identity.User{
			UID:           uid,
			Email:         email,
			EmailVerified: providerName == "naver",
			DisplayName:   name,
			AvatarURL:     avatar,
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}

		profile := &models.Profile{
			ID:          uid,
			Email:       email,
			DisplayName: name,
			AvatarURL:   avatar,
			Bio:         gofakeit.Sentence(8),
			Role:        models.RoleUser,
		}
		if err := db.Create(profile).Error; err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func createPosts(db *gorm.DB, profiles []*models.Profile, count int) ([]*models.Post, error) {
	if len(profiles) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := profiles[rand.Intn(len(profiles))]
		body := gofakeit.Paragraph(1, 3, 8, "\n")
		status := models.PostStatusPublished
		if rand.Intn(5) == 0 {
			status = models.PostStatusDraft
		}

		createdAt := time.Now().Add(-time.Duration(rand.Intn(90*24)) * time.Hour)
		post := &models.Post{
			AuthorID:  author.ID,
			Title:     gofakeit.Sentence(5),
			Content:   models.PostContent{"type": "text", "text": body},
			Summary:   summarize(body),
			Status:    status,
			CreatedAt: createdAt,
		}
		if status == models.PostStatusPublished {
			publishedAt := createdAt.Add(time.Duration(rand.Intn(48)) * time.Hour)
			post.PublishedAt = &publishedAt
			post.ViewsCount = int64(rand.Intn(500))
		}
		if rand.Intn(3) == 0 {
			post.CoverImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/400", gofakeit.UUID())
		}

		if err := db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createComments(db *gorm.DB, profiles []*models.Profile, posts []*models.Post, count int) error {
	published := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == models.PostStatusPublished {
			published = append(published, p)
		}
	}
	if len(published) == 0 || len(profiles) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		comment := &models.Comment{
			PostID:   published[rand.Intn(len(published))].ID,
			AuthorID: profiles[rand.Intn(len(profiles))].ID,
			Content:  gofakeit.Sentence(12),
		}
		if err := db.Create(comment).Error; err != nil {
			return err
		}
	}
	return nil
}

func summarize(text string) string {
	runes := []rune(text)
	if len(runes) <= 10 {
		return text
	}
	return string(runes[:10]) + "..."
}
