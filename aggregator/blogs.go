package aggregator

import (
	"context"
	"strings"

	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/models"
	"github.com/rpupo63/blogroll/services"
)

// RegisterBlog records a feed for userID and imports every entry it currently
// has as a post of the new blog. The blog is kept even when the feed cannot
// be read; such a blog simply has no posts.
func (s *Service) RegisterBlog(ctx context.Context, userID int64, feedURL string) (*models.Blog, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, errs.NewMissingRequiredFieldError("feed_url")
	}

	feedURL = services.EnsureScheme(feedURL)
	blog := &models.Blog{
		UserID:  userID,
		FeedURL: feedURL,
		URL:     services.DisplayURL(feedURL),
		Created: s.now(),
	}
	if err := s.db.BlogRepo().Add(ctx, blog); err != nil {
		return nil, errs.NewDatabaseError("create", "blog", err)
	}

	logger := s.logger.With().Str("blogId", blog.ID.String()).Str("feedUrl", feedURL).Logger()

	entries, fetchErrs := s.feeds.Fetch(ctx, feedURL)
	for _, err := range fetchErrs {
		logger.Warn().Err(err).Msg("Feed problem")
	}

	imported := 0
	for _, entry := range entries {
		_, err := s.withUniqueSlug(func(slug string) error {
			return s.db.PostRepo().Add(ctx, &models.Post{
				BlogID:      blog.ID,
				URL:         entry.Link,
				Title:       entry.Title,
				DateUpdated: entry.Published.UTC(),
				Slug:        slug,
			})
		})
		if err != nil {
			return blog, errs.NewDatabaseError("create", "post", err)
		}
		imported++
	}

	logger.Info().Int("posts", imported).Int("problems", len(fetchErrs)).Msg("Blog registered")
	return blog, nil
}
