package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/speaker-registry/internal/api"
	"github.com/ignite/speaker-registry/internal/awsutil"
	"github.com/ignite/speaker-registry/internal/config"
	"github.com/ignite/speaker-registry/internal/notify"
	"github.com/ignite/speaker-registry/internal/pkg/distlock"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
	"github.com/ignite/speaker-registry/internal/repository/dynamo"
	"github.com/ignite/speaker-registry/internal/repository/memory"
	"github.com/ignite/speaker-registry/internal/repository/postgres"
	redisrepo "github.com/ignite/speaker-registry/internal/repository/redis"
	"github.com/ignite/speaker-registry/internal/service/registration"
	"github.com/ignite/speaker-registry/internal/storage"
)

// backend is everything the server needs from the configured infrastructure.
type backend struct {
	store    registration.Store
	notifier registration.Notifier
	checks   map[string]api.HealthCheck
	closers  []func() error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

// autoMigrate applies pending migrations. A lock held elsewhere means another
// replica is migrating, so startup continues without waiting for it.
func autoMigrate(ctx context.Context, db *sql.DB, lock distlock.DistLock) error {
	n, err := postgres.Migrate(ctx, db, lock)
	if errors.Is(err, distlock.ErrNotAcquired) {
		logger.Warn("skipping migrations, lock held by another instance")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("migrations complete", "applied", n)
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{checks: make(map[string]api.HealthCheck)}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, redisClient.Close)
		b.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	needsAWS := cfg.Storage.Type == config.StorageDynamoDB || cfg.Storage.S3Bucket != ""
	var awsOpts awsutil.Options
	if needsAWS {
		awsOpts = awsutil.Options{Region: cfg.Storage.AWSRegion, Profile: cfg.Storage.GetAWSProfile()}
	}

	switch cfg.Storage.Type {
	case config.StorageMemory:
		b.store = memory.NewSpeakerRepo()

	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg.Database)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.checks["postgres"] = db.PingContext

		if cfg.Database.AutoMigrate {
			lock := distlock.NewLock(redisClient, db, "migrate", 5*time.Minute)
			if err := autoMigrate(ctx, db, lock); err != nil {
				b.Close()
				return nil, err
			}
		}
		b.store = postgres.NewSpeakerRepo(db)

	case config.StorageRedis:
		b.store = redisrepo.NewSpeakerRepo(redisClient, cfg.Redis.KeyPrefix)

	case config.StorageDynamoDB:
		awsCfg, err := awsutil.LoadConfig(ctx, awsOpts)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.store = dynamo.NewSpeakerRepo(dynamodb.NewFromConfig(awsCfg), cfg.Storage.DynamoDBTable)

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}

	if cfg.Storage.S3Bucket != "" {
		awsCfg, err := awsutil.LoadConfig(ctx, awsOpts)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.store = storage.NewArchivingRepository(b.store, s3.NewFromConfig(awsCfg), cfg.Storage.S3Bucket)
		logger.Info("speaker archive enabled", "bucket", cfg.Storage.S3Bucket)
	}

	if cfg.Notifications.Enabled {
		n := cfg.Notifications
		awsCfg, err := awsutil.LoadConfig(ctx, awsutil.Options{
			Region:    n.Region,
			AccessKey: n.AccessKey,
			SecretKey: n.SecretKey,
			Profile:   cfg.Storage.GetAWSProfile(),
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		notifier, err := notify.NewSESNotifier(sesv2.NewFromConfig(awsCfg), notify.Config{
			FromEmail: n.FromEmail,
			FromName:  n.FromName,
			Subject:   n.SubjectTemplate,
			Body:      n.BodyTemplate,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.notifier = notifier
		logger.Info("confirmation emails enabled", "from", n.FromEmail)
	}

	return b, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres at %s: %w", extractHost(cfg.URL), err)
	}
	logger.Info("connected to postgres", "host", extractHost(cfg.URL))
	return db, nil
}
