package aggregator

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/models"
)

// ListRecent returns the limit most recently updated posts across all blogs,
// each with its author and full comment list. A non-positive limit means the
// configured timeline size.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]models.TimelinePost, error) {
	if limit <= 0 {
		limit = s.opts.TimelineLimit
	}

	posts, err := s.db.PostRepo().FindRecent(ctx, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "posts", err)
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	comments, err := s.db.CommentRepo().FindByPosts(ctx, ids...)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "comments", err)
	}

	byPost := make(map[uuid.UUID][]models.CommentView, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	timeline := make([]models.TimelinePost, 0, len(posts))
	for _, p := range posts {
		timeline = append(timeline, models.TimelinePost{
			PostView: p,
			Comments: byPost[p.ID],
		})
	}
	return timeline, nil
}

// ListFeed returns every post, newest first, for the syndication feed.
func (s *Service) ListFeed(ctx context.Context) (models.Feed, error) {
	posts, err := s.db.PostRepo().FindRecent(ctx, 0)
	if err != nil {
		return models.Feed{}, errs.NewDatabaseError("list", "posts", err)
	}

	feed := models.Feed{
		SiteURL: s.opts.SiteURL,
		Posts:   make([]models.FeedPost, 0, len(posts)),
	}
	for _, p := range posts {
		feed.Posts = append(feed.Posts, models.FeedPost{Post: p.Post, Author: p.Author})
	}
	return feed, nil
}
