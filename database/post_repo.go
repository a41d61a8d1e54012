package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/blogroll/models"
	"gorm.io/gorm"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// postRow is one post joined through its blog to the owning user.
type postRow struct {
	models.Post
	AuthorID        int64
	AuthorFirstName string
	AuthorLastName  string
	AvatarURL       string
}

func (row postRow) view() models.PostView {
	return models.PostView{
		Post:      row.Post,
		Author:    row.AuthorFirstName + " " + row.AuthorLastName,
		AuthorID:  row.AuthorID,
		AvatarURL: row.AvatarURL,
	}
}

func (r *PostRepo) withAuthors(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, users.id AS author_id, users.first_name AS author_first_name, " +
			"users.last_name AS author_last_name, COALESCE(profiles.avatar_url, '') AS avatar_url").
		Joins("JOIN blogs ON blogs.id = posts.blog_id").
		Joins("JOIN users ON users.id = blogs.user_id").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id")
}

// FindRecent returns the limit most recently updated posts across all blogs.
// A non-positive limit returns every post.
func (r *PostRepo) FindRecent(ctx context.Context, limit int) ([]models.PostView, error) {
	query := r.withAuthors(ctx).Order("posts.date_updated DESC").Order("posts.slug ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []postRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.view())
	}
	return views, nil
}

// FindViewBySlug returns nil, nil when no post has that slug.
func (r *PostRepo) FindViewBySlug(ctx context.Context, slug string) (*models.PostView, error) {
	var rows []postRow
	if err := r.withAuthors(ctx).Where("posts.slug = ?", slug).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	view := rows[0].view()
	return &view, nil
}

// FindBySlug returns nil, nil when no post has that slug.
func (r *PostRepo) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByBlog returns a blog's posts, newest first.
func (r *PostRepo) FindByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Where("blog_id = ?", blogID).Order("date_updated DESC").Find(&posts).Error
	return posts, err
}

// Add inserts a new post into the database
func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}
