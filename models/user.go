package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is a local account mirroring an identity from the external identity
// service. Its ID is the external id, so it is never generated locally.
type User struct {
	ID           int64     `json:"id" db:"id" gorm:"primaryKey;autoIncrement:false"`
	Username     string    `json:"username" db:"username" gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string    `json:"email" db:"email" gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName    string    `json:"firstName" db:"first_name" gorm:"type:varchar(150);not null"`
	LastName     string    `json:"lastName" db:"last_name" gorm:"type:varchar(150);not null"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:varchar(128);not null"`
	IsActive     bool      `json:"isActive" db:"is_active" gorm:"not null"`
	DateJoined   time.Time `json:"dateJoined" db:"date_joined" gorm:"type:timestamp;not null"`
}

// DisplayName is how posts are attributed on the timeline and in the feed.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Profile holds the parts of a user copied from the identity service.
type Profile struct {
	UserID    int64          `json:"userId" db:"user_id" gorm:"primaryKey;autoIncrement:false"`
	AvatarURL string         `json:"avatarUrl" db:"avatar_url" gorm:"type:text;not null;default:''"`
	Github    string         `json:"github" db:"github" gorm:"type:varchar(100);not null;default:''"`
	Twitter   string         `json:"twitter" db:"twitter" gorm:"type:varchar(100);not null;default:''"`
	Identity  datatypes.JSON `json:"identity,omitempty" db:"identity"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at" gorm:"type:timestamp"`
}
