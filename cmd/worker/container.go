// path: cmd/worker/container.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/insightssync"
	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/application/review"
	"github.com/techappsUT/socialqueue-ucb/internal/application/ticks"
	"github.com/techappsUT/socialqueue-ucb/internal/application/tokenlifecycle"
	"github.com/techappsUT/socialqueue-ucb/internal/application/ucb"
	"github.com/techappsUT/socialqueue-ucb/internal/chat"
	"github.com/techappsUT/socialqueue-ucb/internal/config"
	"github.com/techappsUT/socialqueue-ucb/internal/infrastructure/services"
	"github.com/techappsUT/socialqueue-ucb/internal/jobqueue"
	"github.com/techappsUT/socialqueue-ucb/internal/llm"
	"github.com/techappsUT/socialqueue-ucb/internal/similarity"
	"github.com/techappsUT/socialqueue-ucb/internal/store"
	"github.com/techappsUT/socialqueue-ucb/internal/threads"
)

// systemAuthorID is the service-account UUID attributed to posts the UCB
// selector drafts on its own, matching the constant cmd/api's container
// derives the same way.
var systemAuthorID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("system:ucb-selector"))

// WorkerContainer wires the same infrastructure clients and application use
// cases as cmd/api's Container, minus everything that exists only to serve
// HTTP requests (no handlers, no operator/session store, no auth middleware).
type WorkerContainer struct {
	Logger     common.Logger
	Queue      *jobqueue.Queue
	Dispatcher *jobqueue.Dispatcher

	Generator      *pipeline.Generator
	Publisher      *publish.Publisher
	TokenLifecycle *tokenlifecycle.Lifecycle
	Scheduler      *ticks.Scheduler
}

func NewWorkerContainer(cfg *config.Config, sqlDB *sql.DB) (*WorkerContainer, error) {
	logger := services.NewLogger()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Queue.Addr,
		Password: cfg.Queue.Password,
		DB:       cfg.Queue.DB,
	})
	queue := jobqueue.New(redisClient, logger)
	dispatcher := jobqueue.NewDispatcher(queue)

	llmClient := llm.New(
		llm.EngineConfig{Name: llm.Engine(cfg.LLM.PrimaryEngine), BaseURL: cfg.LLM.PrimaryBaseURL, APIKey: cfg.LLM.PrimaryAPIKey, Model: cfg.LLM.PrimaryModel},
		llm.EngineConfig{Name: llm.Engine(cfg.LLM.FallbackEngine), BaseURL: cfg.LLM.FallbackBaseURL, APIKey: cfg.LLM.FallbackAPIKey, Model: cfg.LLM.FallbackModel},
		llm.EngineConfig{Name: llm.Engine(cfg.LLM.EmbeddingEngine), BaseURL: cfg.LLM.EmbeddingBaseURL, APIKey: cfg.LLM.EmbeddingAPIKey, Model: cfg.LLM.EmbeddingModel},
		logger,
	)

	threadsClient := threads.New(threads.Config{
		ClientID:     cfg.Threads.ClientID,
		ClientSecret: cfg.Threads.ClientSecret,
		RedirectURI:  cfg.Threads.RedirectURI,
	}, logger)

	cipher, err := threads.NewTokenEncryption(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("token cipher setup failed: %w", err)
	}

	chatNotifier := chat.New(chat.Config{
		ChannelAccessToken: cfg.Chat.ChannelAccessToken,
		SigningSecret:      cfg.Chat.SigningSecret,
		AdminUserID:        cfg.Chat.AdminUserID,
	})

	checker := similarity.New(similarity.DefaultThreshold)

	postStore := store.NewPostStore(sqlDB)
	reviewStore := store.NewReviewStore(sqlDB)
	socialStore := store.NewSocialStore(sqlDB)
	templateStore := store.NewTemplateStore(sqlDB)
	timeSlotStore := store.NewTimeSlotStore(sqlDB)
	insightsStore := store.NewInsightsStore(sqlDB)
	schedulerConfigStore := store.NewSchedulerConfigStore(sqlDB)
	autoScheduleStore := store.NewAutoScheduleStore(sqlDB)

	reviewCoord := review.New(postStore, reviewStore, chatNotifier, dispatcher, logger, cfg.Chat.AdminUserID)
	generator := pipeline.New(postStore, llmClient, checker, reviewCoord, logger, cfg.LLM.MaxAttempts, similarity.DefaultRecentN)
	publisher := publish.New(postStore, socialStore, autoScheduleStore, insightsStore, threadsClient, cipher, logger)
	tokenLifecycle := tokenlifecycle.New(socialStore, threadsClient, cipher, chatNotifier, dispatcher, logger, cfg.Chat.AdminUserID)
	selector := ucb.New(templateStore, timeSlotStore, autoScheduleStore, schedulerConfigStore, insightsStore, postStore, dispatcher, logger, systemAuthorID)
	insightsSync := insightssync.New(postStore, socialStore, insightsStore, templateStore, threadsClient, cipher, logger)
	schedulerTicks := ticks.New(reviewCoord, reviewStore, autoScheduleStore, postStore, schedulerConfigStore, tokenLifecycle, insightsSync, selector, dispatcher, chatNotifier, logger)

	return &WorkerContainer{
		Logger:         logger,
		Queue:          queue,
		Dispatcher:     dispatcher,
		Generator:      generator,
		Publisher:      publisher,
		TokenLifecycle: tokenLifecycle,
		Scheduler:      schedulerTicks,
	}, nil
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode,
	)
}

func setupDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}
