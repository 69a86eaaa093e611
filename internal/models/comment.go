package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a reply to a post. ParentID allows threading but the
// client currently renders comments flat.
type Comment struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	PostID    string         `gorm:"not null;index" json:"postId"`
	AuthorID  string         `gorm:"not null;index" json:"authorId"`
	Author    *Profile       `gorm:"foreignKey:AuthorID" json:"-"`
	ParentID  *string        `json:"parentId,omitempty"`
	Content   string         `gorm:"not null" json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AuthorRef *ProfileRef `gorm:"-" json:"author,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AfterFind fills the embedded author reference.
func (c *Comment) AfterFind(_ *gorm.DB) error {
	c.AuthorRef = c.Author.Ref()
	return nil
}
