package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blog is a feed registered by a user.
type Blog struct {
	ID      uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	UserID  int64     `json:"userId" db:"user_id" gorm:"not null;index:idx_blog_user_id"`
	FeedURL string    `json:"feedUrl" db:"feed_url" gorm:"type:text;not null"`
	URL     string    `json:"url" db:"url" gorm:"type:text;not null"`
	Created time.Time `json:"created" db:"created" gorm:"type:timestamp;not null"`
}

func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Post is one entry crawled from a blog's feed.
type Post struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	BlogID      uuid.UUID `json:"blogId" db:"blog_id" gorm:"type:uuid;not null;index:idx_post_blog_id"`
	URL         string    `json:"url" db:"url" gorm:"type:text;not null"`
	Title       string    `json:"title" db:"title" gorm:"type:text;not null"`
	Content     string    `json:"content" db:"content" gorm:"type:text;not null;default:''"`
	DateUpdated time.Time `json:"dateUpdated" db:"date_updated" gorm:"type:timestamp;not null;index:idx_post_date_updated"`
	Slug        string    `json:"slug" db:"slug" gorm:"type:varchar(16);not null;uniqueIndex"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
