package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/blogroll/models"
	"gorm.io/gorm"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

type commentRow struct {
	models.Comment
	AuthorFirstName string
	AvatarURL       string
}

// Add inserts a new comment into the database
func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByPosts returns the comments of every given post, oldest first, with
// the commenter's first name and avatar.
func (r *CommentRepo) FindByPosts(ctx context.Context, postIDs ...uuid.UUID) ([]models.CommentView, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	var rows []commentRow
	err := r.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.first_name AS author_first_name, COALESCE(profiles.avatar_url, '') AS avatar_url").
		Joins("JOIN users ON users.id = comments.user_id").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Where("comments.post_id IN ?", postIDs).
		Order("comments.date_modified ASC").
		Order("comments.slug ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.CommentView{
			Comment:   row.Comment,
			Author:    row.AuthorFirstName,
			AuthorID:  row.UserID,
			AvatarURL: row.AvatarURL,
		})
	}
	return views, nil
}

// CountByPost returns how many comments a post has.
func (r *CommentRepo) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
