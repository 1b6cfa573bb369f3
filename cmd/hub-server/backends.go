package main

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	accountcache "github.com/blueprint-hub/hub-server/account/cache"
	accountmemory "github.com/blueprint-hub/hub-server/account/memory"
	accountpg "github.com/blueprint-hub/hub-server/account/postgres"
	"github.com/blueprint-hub/hub-server/blob"
	blobmemory "github.com/blueprint-hub/hub-server/blob/memory"
	blobpg "github.com/blueprint-hub/hub-server/blob/postgres"
	"github.com/blueprint-hub/hub-server/blueprint"
	blueprintmemory "github.com/blueprint-hub/hub-server/blueprint/memory"
	blueprintpg "github.com/blueprint-hub/hub-server/blueprint/postgres"
	"github.com/blueprint-hub/hub-server/collection"
	collectionmemory "github.com/blueprint-hub/hub-server/collection/memory"
	collectionpg "github.com/blueprint-hub/hub-server/collection/postgres"
	"github.com/blueprint-hub/hub-server/comment"
	commentmemory "github.com/blueprint-hub/hub-server/comment/memory"
	commentpg "github.com/blueprint-hub/hub-server/comment/postgres"
	"github.com/blueprint-hub/hub-server/config"
	pg "github.com/blueprint-hub/hub-server/database/postgres"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/moderation/openai"
	"github.com/blueprint-hub/hub-server/moderation/rekognition"
	"github.com/blueprint-hub/hub-server/notification"
	"github.com/blueprint-hub/hub-server/notification/slack"
	"github.com/blueprint-hub/hub-server/ratelimit"
	ratelimitmemory "github.com/blueprint-hub/hub-server/ratelimit/memory"
	ratelimitredis "github.com/blueprint-hub/hub-server/ratelimit/redis"
	"github.com/blueprint-hub/hub-server/s3"
	s3aws "github.com/blueprint-hub/hub-server/s3/aws"
	s3memory "github.com/blueprint-hub/hub-server/s3/memory"
)

type stores struct {
	accounts    account.Store
	blueprints  blueprint.Store
	collections collection.Store
	comments    comment.Store
	blobs       blob.Store

	db *sql.DB
}

func (s *stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openStores uses postgres when a database url is configured and memory
// otherwise. User lookups are cached in both cases.
func openStores(ctx context.Context, log *zap.Logger, cfg *config.Config) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("No database configured, using in-memory stores")
		return &stores{
			accounts:    accountcache.NewInCache(accountmemory.NewInMemory(), cfg.UserCacheTTL),
			blueprints:  blueprintmemory.NewInMemory(),
			collections: collectionmemory.NewInMemory(),
			comments:    commentmemory.NewInMemory(),
			blobs:       blobmemory.NewInMemory(),
		}, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := pg.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return &stores{
		accounts:    accountcache.NewInCache(accountpg.NewInPostgres(db), cfg.UserCacheTTL),
		blueprints:  blueprintpg.NewInPostgres(db),
		collections: collectionpg.NewInPostgres(db),
		comments:    commentpg.NewInPostgres(db),
		blobs:       blobpg.NewInPostgres(db),
		db:          db,
	}, nil
}

func openLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		limiter := ratelimitmemory.NewLimiter()
		return limiter, limiter.Close, nil
	}

	limiter, err := ratelimitredis.NewLimiterFromURL(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return limiter, func() { _ = limiter.Close() }, nil
}

func openS3(ctx context.Context, log *zap.Logger, cfg *config.Config) (s3.Store, error) {
	if cfg.S3.Bucket == "" {
		log.Warn("No S3 bucket configured, keeping uploads in memory")
		return s3memory.NewInMemory(), nil
	}

	return s3aws.NewAWSStore(ctx, log.Named("s3"), s3aws.Config{
		Region:    cfg.S3.Region,
		Bucket:    cfg.S3.Bucket,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	})
}

// newModerationClient returns nil when moderation is disabled; the gate never
// calls it then.
func newModerationClient(ctx context.Context, log *zap.Logger, cfg *config.Config) (moderation.Client, error) {
	if !cfg.Automod.Enabled {
		return nil, nil
	}

	switch cfg.Automod.Provider {
	case config.ProviderRekognition:
		return rekognition.NewAWSClient(ctx, cfg.S3.Region, cfg.Automod.RejectConfidence)
	default:
		opts := []openai.Option{
			openai.WithTimeout(cfg.Automod.Timeout),
			openai.WithLogger(log.Named("openai")),
		}
		if cfg.Automod.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Automod.BaseURL))
		}
		return openai.NewClient(cfg.Automod.APIKey, opts...)
	}
}

func newNotifier(log *zap.Logger, cfg *config.Config) notification.Notifier {
	if cfg.SlackWebhookURL == "" {
		return notification.NewLogNotifier(log.Named("notification"))
	}
	return slack.NewNotifier(log.Named("slack"), cfg.SlackWebhookURL)
}
