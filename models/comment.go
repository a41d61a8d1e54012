package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reply to a post. ParentSlug exists for threading but nothing
// sets it yet.
type Comment struct {
	Slug         string    `json:"slug" db:"slug" gorm:"type:varchar(16);primaryKey"`
	UserID       int64     `json:"userId" db:"user_id" gorm:"not null;index:idx_comment_user_id"`
	PostID       uuid.UUID `json:"postId" db:"post_id" gorm:"type:uuid;not null;index:idx_comment_post_id"`
	ParentSlug   *string   `json:"parentSlug,omitempty" db:"parent_slug" gorm:"type:varchar(16)"`
	DateModified time.Time `json:"dateModified" db:"date_modified" gorm:"type:timestamp;not null"`
	Content      string    `json:"content" db:"content" gorm:"type:text;not null"`
}
