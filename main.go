package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/blogroll/aggregator"
	api "github.com/rpupo63/blogroll/api"
	"github.com/rpupo63/blogroll/config"
	"github.com/rpupo63/blogroll/database"
	"github.com/rpupo63/blogroll/models"
	"github.com/rpupo63/blogroll/services"
)

func main() {
	setupLogging(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	log.Info().Msg("Initializing app...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}
	setupLogging(config.GetString(c, "LOG_LEVEL", "info"), config.GetString(c, "LOG_FORMAT", "json"))

	dbConfig := database.ConfigFrom(c)
	log.Info().Str("dbType", dbConfig.Type).Int("replicas", len(dbConfig.ReplicaDSNs)).Msg("Connecting to database...")
	db, err := database.Open(dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(c, "GENERATE_OUT_PATH", "./query")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		if err := models.WriteColumnMismatchReport(db, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	currentDB := database.New(db)
	if config.GetBool(c, "AUTO_MIGRATE", true) {
		if err := currentDB.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
		log.Info().Msg("Database migration completed")
	}

	svc := aggregator.New(
		currentDB,
		services.NewIdentityClient(
			config.GetString(c, "IDENTITY_URL", services.DefaultIdentityURL),
			config.GetSeconds(c, "IDENTITY_TIMEOUT_SECONDS", 10*time.Second),
		),
		services.NewFeedFetcher(config.GetSeconds(c, "FEED_FETCH_TIMEOUT_SECONDS", 10*time.Second)),
		aggregator.Options{
			SiteURL:       config.GetString(c, "SITE_URL", "http://localhost:"+config.GetString(c, "PORT", "8080")),
			TimelineLimit: config.GetInt(c, "TIMELINE_LIMIT", aggregator.DefaultTimelineLimit),
		},
	)

	server, err := api.NewServer(c, svc)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		server.ShutdownGracefully(config.GetSeconds(c, "SHUTDOWN_TIMEOUT_SECONDS", 30*time.Second))
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server stopped")
}

// setupLogging configures the global zerolog logger. format "console" gives
// human readable output; anything else is JSON.
func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(format, "console") {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
