package database

import (
	"fmt"
	stdlog "log"
	"strings"
	"time"

	"github.com/rpupo63/blogroll/config"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Config describes how to reach the primary store and its read replicas.
type Config struct {
	Type          string // "postgres" or "sqlite"
	DSN           string
	ReplicaDSNs   []string
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
}

// ConfigFrom builds a Config from the environment map. DATABASE_URL wins over
// the individual DB_* settings.
func ConfigFrom(c map[string]string) Config {
	cfg := Config{
		Type:          strings.ToLower(config.GetString(c, "DB_TYPE", "postgres")),
		DSN:           config.GetString(c, "DATABASE_URL", ""),
		SlowThreshold: time.Duration(config.GetInt(c, "DB_SLOW_QUERY_MS", 2000)) * time.Millisecond,
		LogLevel:      logger.Warn,
	}

	if cfg.DSN == "" {
		switch cfg.Type {
		case "sqlite":
			cfg.DSN = config.GetString(c, "SQLITE_PATH", "blogroll.db")
		default:
			cfg.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
				config.GetString(c, "DB_HOST", "localhost"),
				config.GetString(c, "DB_USER", "postgres"),
				config.GetString(c, "DB_PASSWORD", ""),
				config.GetString(c, "DB_NAME", "blogroll"),
				config.GetString(c, "DB_PORT", "5432"),
				config.GetString(c, "DB_SSLMODE", "disable"),
			)
		}
	}

	cfg.ReplicaDSNs = config.GetList(c, "DB_REPLICA_URLS")

	return cfg
}

func (cfg Config) dialector(dsn string) (gorm.Dialector, error) {
	switch cfg.Type {
	case "postgres", "":
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.Type)
	}
}

// Open connects to the primary store, registers read replicas when any are
// configured and checks the connection.
func Open(cfg Config) (*gorm.DB, error) {
	primary, err := cfg.dialector(cfg.DSN)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(
		stdlog.New(log.Logger, "", 0),
		logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  cfg.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(primary, &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	if len(cfg.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaDSNs))
		for _, dsn := range cfg.ReplicaDSNs {
			replica, err := cfg.dialector(dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, replica)
		}
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
		log.Info().Int("replicas", len(replicas)).Msg("Read replicas registered")
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}
