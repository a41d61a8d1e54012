package aggregator

import (
	"context"
	"strings"

	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/models"
)

// PostWithComments returns the post with the given slug and its comments,
// oldest first.
func (s *Service) PostWithComments(ctx context.Context, slug string) (models.PostView, []models.CommentView, error) {
	post, err := s.db.PostRepo().FindViewBySlug(ctx, slug)
	if err != nil {
		return models.PostView{}, nil, errs.NewDatabaseError("find", "post", err)
	}
	if post == nil {
		return models.PostView{}, nil, errs.NewNotFoundError("post")
	}

	comments, err := s.db.CommentRepo().FindByPosts(ctx, post.ID)
	if err != nil {
		return models.PostView{}, nil, errs.NewDatabaseError("list", "comments", err)
	}
	return *post, comments, nil
}

// AddComment stores content as userID's comment on the post with the given
// slug. Blank content is ignored and returns nil, nil.
func (s *Service) AddComment(ctx context.Context, slug string, userID int64, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	post, err := s.db.PostRepo().FindBySlug(ctx, slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}
	if post == nil {
		return nil, errs.NewNotFoundError("post")
	}

	comment := &models.Comment{
		UserID:       userID,
		PostID:       post.ID,
		DateModified: s.now(),
		Content:      content,
	}
	_, err = s.withUniqueSlug(func(commentSlug string) error {
		comment.Slug = commentSlug
		return s.db.CommentRepo().Add(ctx, comment)
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}

	s.logger.Info().Str("post", slug).Str("comment", comment.Slug).Int64("userId", userID).Msg("Comment added")
	return comment, nil
}
