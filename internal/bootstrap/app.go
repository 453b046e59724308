package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"foodgram/internal/app"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/logging"
	"foodgram/internal/model"
	"foodgram/internal/platform/database"
	rabbitmqClient "foodgram/internal/platform/rabbitmq"
	redisClient "foodgram/internal/platform/redis"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
	"foodgram/internal/worker"
)

// App holds the process-wide resources. Tests build it by hand with an
// in-memory database and fakes for the token store and image store.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Tokens app.TokenRevoker
	Images app.ImageStore
	// Events is nil when RabbitMQ is disabled; activity then goes straight
	// to the database.
	Events         app.ActivityPublisher
	ActivityWorker *worker.ActivityPersistWorker

	publisher *rabbitmqClient.ActivityPublisher
	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	a := &App{Config: cfg, StartedAt: time.Now()}
	if err := a.open(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg := a.Config

	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	a.DB = db
	if err := model.Migrate(db); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.Redis = redisCli
	a.Tokens = cache.NewTokenBlacklist(redisCli)

	images, err := storage.NewMinioStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	a.Images = images

	if !cfg.RabbitMQ.Enabled {
		logging.Info().Msg("rabbitmq disabled, activity is written synchronously")
		return nil
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return err
	}
	a.MQConn = mqConn
	a.publisher = rabbitmqClient.NewActivityPublisher(mqConn, cfg.RabbitMQ.ActivityQueue)
	a.Events = a.publisher

	a.ActivityWorker = worker.NewActivityPersistWorker(mqConn, repository.NewActivityRepository(db), cfg.RabbitMQ.ActivityQueue)
	if err := a.ActivityWorker.Start(ctx); err != nil {
		return fmt.Errorf("start activity worker failed: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.ActivityWorker != nil {
		a.ActivityWorker.Close()
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		errs = append(errs, a.MQConn.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
