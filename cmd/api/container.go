// path: cmd/api/container.go
package main

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appauth "github.com/techappsUT/socialqueue-ucb/internal/application/auth"
	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/insightssync"
	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/application/review"
	"github.com/techappsUT/socialqueue-ucb/internal/application/ticks"
	"github.com/techappsUT/socialqueue-ucb/internal/application/tokenlifecycle"
	"github.com/techappsUT/socialqueue-ucb/internal/application/ucb"
	"github.com/techappsUT/socialqueue-ucb/internal/auth"
	"github.com/techappsUT/socialqueue-ucb/internal/chat"
	"github.com/techappsUT/socialqueue-ucb/internal/config"
	"github.com/techappsUT/socialqueue-ucb/internal/handlers"
	"github.com/techappsUT/socialqueue-ucb/internal/infrastructure/services"
	"github.com/techappsUT/socialqueue-ucb/internal/jobqueue"
	"github.com/techappsUT/socialqueue-ucb/internal/llm"
	"github.com/techappsUT/socialqueue-ucb/internal/middleware"
	"github.com/techappsUT/socialqueue-ucb/internal/operator"
	"github.com/techappsUT/socialqueue-ucb/internal/similarity"
	"github.com/techappsUT/socialqueue-ucb/internal/store"
	"github.com/techappsUT/socialqueue-ucb/internal/threads"
)

// systemAuthorID is the service-account UUID attributed to posts the UCB
// selector drafts on its own, mirroring ReviewerIDFor's deterministic
// projection so it stays stable across restarts without a config knob.
var systemAuthorID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("system:ucb-selector"))

// Container holds every dependency the HTTP surface and worker processes
// share: infrastructure clients, repositories, application use cases, and
// the handlers built on top of them.
type Container struct {
	Config *config.Config

	Logger     common.Logger
	Queue      *jobqueue.Queue
	Dispatcher *jobqueue.Dispatcher
	LLMClient  *llm.Client
	Threads    *threads.Client
	Cipher     *threads.TokenEncryption
	Chat       *chat.Notifier
	Similarity *similarity.Checker

	Posts               *store.PostStore
	Reviews             *store.ReviewStore
	Social              *store.SocialStore
	Templates           *store.TemplateStore
	TimeSlots           *store.TimeSlotStore
	Insights            *store.InsightsStore
	SchedulerConfigRepo *store.SchedulerConfigStore
	AutoSchedules       *store.AutoScheduleStore

	Operators *operator.Store

	AuthService    *auth.Service
	TokenService   *auth.TokenService
	AuthMiddleware *middleware.AuthMiddleware

	Generator    *pipeline.Generator
	ReviewCoord  *review.Coordinator
	Publisher    *publish.Publisher
	TokenLifecyc *tokenlifecycle.Lifecycle
	Selector     *ucb.Selector
	Scheduler    *ticks.Scheduler
	InsightsSync *insightssync.Syncer

	LoginUC   *appauth.LoginUseCase
	RefreshUC *appauth.RefreshTokenUseCase
	LogoutUC  *appauth.LogoutUseCase

	AuthHandler      *handlers.AuthHandler
	PostHandler      *handlers.PostHandler
	ReviewHandler    *handlers.ReviewHandler
	WebhookHandler   *handlers.WebhookHandler
	ThreadsHandler   *handlers.ThreadsHandler
	TemplateHandler  *handlers.TemplateHandler
	TimeSlotHandler  *handlers.TimeSlotHandler
	SchedulerHandler *handlers.SchedulerHandler
	StatsHandler     *handlers.StatisticsHandler
	HealthHandler    *handlers.HealthHandler
}

// NewContainer wires every dependency from the ground up: infrastructure
// clients first, then repositories, then application use cases, then the
// HTTP handlers that sit on top of them.
func NewContainer(cfg *config.Config, sqlDB *sql.DB, gormDB *gorm.DB) (*Container, error) {
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
		return nil, err
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

	operatorStore := operator.NewStore(gormDB)

	// The access and refresh tokens are signed with derived, distinct
	// secrets so a leaked access token cannot be replayed as a refresh
	// token even though both come from one configured JWT secret.
	tokenService := auth.NewTokenService(cfg.Security.JWTSecret, cfg.Security.JWTSecret+":refresh", "socialqueue-ucb")
	authService := auth.NewService(operatorStore, tokenService)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	reviewCoord := review.New(postStore, reviewStore, chatNotifier, dispatcher, logger, cfg.Chat.AdminUserID)
	generator := pipeline.New(postStore, llmClient, checker, reviewCoord, logger, cfg.LLM.MaxAttempts, similarity.DefaultRecentN)
	publisher := publish.New(postStore, socialStore, autoScheduleStore, insightsStore, threadsClient, cipher, logger)
	tokenLifecycle := tokenlifecycle.New(socialStore, threadsClient, cipher, chatNotifier, dispatcher, logger, cfg.Chat.AdminUserID)
	selector := ucb.New(templateStore, timeSlotStore, autoScheduleStore, schedulerConfigStore, insightsStore, postStore, dispatcher, logger, systemAuthorID)
	insightsSync := insightssync.New(postStore, socialStore, insightsStore, templateStore, threadsClient, cipher, logger)
	schedulerTicks := ticks.New(reviewCoord, reviewStore, autoScheduleStore, postStore, schedulerConfigStore, tokenLifecycle, insightsSync, selector, dispatcher, chatNotifier, logger)

	loginUC := appauth.NewLoginUseCase(authService, logger)
	refreshUC := appauth.NewRefreshTokenUseCase(authService, logger)
	logoutUC := appauth.NewLogoutUseCase(authService, logger)

	return &Container{
		Config: cfg,

		Logger:     logger,
		Queue:      queue,
		Dispatcher: dispatcher,
		LLMClient:  llmClient,
		Threads:    threadsClient,
		Cipher:     cipher,
		Chat:       chatNotifier,
		Similarity: checker,

		Posts:               postStore,
		Reviews:             reviewStore,
		Social:              socialStore,
		Templates:           templateStore,
		TimeSlots:           timeSlotStore,
		Insights:            insightsStore,
		SchedulerConfigRepo: schedulerConfigStore,
		AutoSchedules:       autoScheduleStore,

		Operators: operatorStore,

		AuthService:    authService,
		TokenService:   tokenService,
		AuthMiddleware: authMiddleware,

		Generator:    generator,
		ReviewCoord:  reviewCoord,
		Publisher:    publisher,
		TokenLifecyc: tokenLifecycle,
		Selector:     selector,
		Scheduler:    schedulerTicks,
		InsightsSync: insightsSync,

		LoginUC:   loginUC,
		RefreshUC: refreshUC,
		LogoutUC:  logoutUC,

		AuthHandler:      handlers.NewAuthHandler(loginUC, refreshUC, logoutUC),
		PostHandler:      handlers.NewPostHandler(postStore, generator, dispatcher, dispatcher, logger),
		ReviewHandler:    handlers.NewReviewHandler(reviewCoord, logger),
		WebhookHandler:   handlers.NewWebhookHandler(reviewCoord, chatNotifier, logger),
		ThreadsHandler:   handlers.NewThreadsHandler(threadsClient, cipher, socialStore, logger),
		TemplateHandler:  handlers.NewTemplateHandler(templateStore, logger),
		TimeSlotHandler:  handlers.NewTimeSlotHandler(timeSlotStore, logger),
		SchedulerHandler: handlers.NewSchedulerHandler(schedulerConfigStore, autoScheduleStore, selector, logger),
		StatsHandler:     handlers.NewStatisticsHandler(postStore, templateStore, timeSlotStore, insightsStore, logger),
		HealthHandler:    handlers.NewHealthHandler(),
	}, nil
}
