package database

import (
	"context"

	"github.com/rpupo63/blogroll/models"
	"gorm.io/gorm"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// Add inserts a new blog into the database
func (r *BlogRepo) Add(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Create(blog).Error
}

// FindByUser returns a user's blogs, oldest first.
func (r *BlogRepo) FindByUser(ctx context.Context, userID int64) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created ASC").Find(&blogs).Error
	return blogs, err
}
