package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post statuses. The only exposed transition is draft -> published.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// PostContent is the opaque structured body of a post, stored as JSON.
// The current shape is {"type": "text", "text": "..."} but anything else is
// carried through untouched.
type PostContent map[string]any

// Value implements driver.Valuer for JSON column storage.
func (c PostContent) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *PostContent) Scan(value any) error {
	if value == nil {
		*c = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported content column type %T", value)
	}
	return json.Unmarshal(raw, c)
}

// Text returns the plain text body when the content has the tagged text shape.
func (c PostContent) Text() (string, bool) {
	if c["type"] != "text" {
		return "", false
	}
	text, ok := c["text"].(string)
	return text, ok
}

// Post represents authored content. Drafts are visible only to their author;
// soft-deleted rows are invisible to every read path.
type Post struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	AuthorID      string         `gorm:"not null;index" json:"authorId"`
	Author        *Profile       `gorm:"foreignKey:AuthorID" json:"-"`
	Title         string         `gorm:"not null" json:"title"`
	Content       PostContent    `gorm:"type:jsonb" json:"content,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	CoverImageURL string         `json:"coverImageUrl,omitempty"`
	Status        string         `gorm:"not null;default:draft;index" json:"status"`
	ViewsCount    int64          `gorm:"not null;default:0" json:"viewsCount"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	PublishedAt   *time.Time     `json:"publishedAt,omitempty"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// AuthorRef is the embedded author shape in responses; populated from Author.
	AuthorRef *ProfileRef `gorm:"-" json:"author,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AfterFind fills the embedded author reference.
func (p *Post) AfterFind(_ *gorm.DB) error {
	p.AuthorRef = p.Author.Ref()
	return nil
}
