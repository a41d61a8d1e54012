// Package aggregator holds the blogroll's domain operations: accounts, blog
// ingestion, the timeline and comment threads. HTTP concerns live in api.
package aggregator

import (
	"context"
	"time"

	"github.com/rpupo63/blogroll/database"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimelineLimit = 10
	maxSlugAttempts      = 5
)

// IdentityVerifier checks credentials against the external identity service.
type IdentityVerifier interface {
	Verify(ctx context.Context, email, password string) (*services.Identity, error)
}

// FeedFetcher retrieves the entries of a remote feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]services.FeedEntry, []error)
}

type Options struct {
	SiteURL       string
	TimelineLimit int
}

type Service struct {
	db       database.Database
	identity IdentityVerifier
	feeds    FeedFetcher
	opts     Options
	now      func() time.Time
	newSlug  func() (string, error)
	logger   zerolog.Logger
}

func New(db database.Database, identity IdentityVerifier, feeds FeedFetcher, opts Options) *Service {
	if opts.TimelineLimit <= 0 {
		opts.TimelineLimit = DefaultTimelineLimit
	}
	return &Service{
		db:       db,
		identity: identity,
		feeds:    feeds,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		newSlug:  func() (string, error) { return services.NewSlug(services.SlugLength) },
		logger:   log.With().Str("service", "aggregator").Logger(),
	}
}

// TimelineLimit is the number of posts ListRecent returns by default.
func (s *Service) TimelineLimit() int {
	return s.opts.TimelineLimit
}

// withUniqueSlug calls insert with fresh slugs until one does not collide
// with an existing row.
func (s *Service) withUniqueSlug(insert func(slug string) error) (string, error) {
	var err error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		var slug string
		if slug, err = s.newSlug(); err != nil {
			return "", err
		}
		if err = insert(slug); err == nil {
			return slug, nil
		}
		if !errs.IsDuplicateKey(err) {
			return "", err
		}
		s.logger.Debug().Str("slug", slug).Msg("Slug collision, retrying")
	}
	return "", err
}
