package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
	"github.com/SamOhrenberg/AboutSamuel/internal/app"
	"github.com/SamOhrenberg/AboutSamuel/internal/cache"
	"github.com/SamOhrenberg/AboutSamuel/internal/config"
	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/observability"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/database"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
	rabbitmqClient "github.com/SamOhrenberg/AboutSamuel/internal/platform/rabbitmq"
	redisClient "github.com/SamOhrenberg/AboutSamuel/internal/platform/redis"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
	"github.com/SamOhrenberg/AboutSamuel/internal/repository"
	"github.com/SamOhrenberg/AboutSamuel/internal/worker"
)

type Services struct {
	Chat       *app.ChatService
	Resume     *app.ResumeService
	Content    *app.ContentService
	Activity   *app.ActivityService
	Embeddings *app.EmbeddingService
	Imports    *app.ImportService
	Contact    *app.ContactService
	Auth       *app.AdminAuthService
}

type App struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *gorm.DB
	// Redis is nil when the server runs without the keyword cache.
	Redis          *redis.Client
	MQConn         *amqp.Connection
	ExchangeWorker *worker.PersistWorker[model.ChatExchange]
	ContactWorker  *worker.PersistWorker[model.ContactRequest]
	Services       Services

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, err
	}
	observability.InitMetrics()

	a := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	if err := a.connect(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Services = buildServices(a)
	if err := a.startWorkers(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	a.DB = db
	if err := database.Migrate(db); err != nil {
		return err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		a.Log.Warn("redis unavailable, keyword cache disabled", "error", err)
	} else {
		a.Redis = redisCli
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ChatExchangeQueue, cfg.RabbitMQ.ContactQueue)
	if err != nil {
		return err
	}
	a.MQConn = mqConn
	return nil
}

func buildServices(a *App) Services {
	cfg := a.Config

	infoRepo := repository.NewInformationRepository(a.DB)
	projectRepo := repository.NewProjectRepository(a.DB)
	workRepo := repository.NewWorkExperienceRepository(a.DB)
	exchangeRepo := repository.NewChatExchangeRepository(a.DB)
	contactRepo := repository.NewContactRequestRepository(a.DB)

	var keywordCache app.KeywordCache
	if a.Redis != nil {
		keywordCache = cache.NewKeywordCache(a.Redis, time.Duration(cfg.Redis.KeywordTTLHours)*time.Hour)
	}

	llm := ai.NewOpenAICompatibleClient(cfg.LLM)
	retriever := rag.NewRetriever(rag.OptionsFromConfig(cfg.Chat), nil)
	knowledge := app.NewKnowledgeService(infoRepo, projectRepo, workRepo, keywordCache, retriever, a.Log)

	contactPublisher := rabbitmqClient.NewJSONPublisher(a.MQConn, cfg.RabbitMQ.ContactQueue)

	return Services{
		Chat: app.NewChatService(
			llm,
			knowledge,
			rabbitmqClient.NewJSONPublisher(a.MQConn, cfg.RabbitMQ.ChatExchangeQueue),
			contactPublisher,
			cfg,
			a.Log,
		),
		Resume:     app.NewResumeService(infoRepo, llm, cfg, a.Log),
		Content:    app.NewContentService(infoRepo, projectRepo, workRepo),
		Activity:   app.NewActivityService(exchangeRepo, contactRepo),
		Embeddings: app.NewEmbeddingService(llm, cfg.LLM.EmbeddingModel, infoRepo, projectRepo, workRepo, a.Log),
		Imports:    app.NewImportService(infoRepo, a.Log),
		Contact:    app.NewContactService(contactPublisher, a.Log),
		Auth: app.NewAdminAuthService(
			cfg.Auth.AdminPasswordHash,
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		),
	}
}

func (a *App) startWorkers(ctx context.Context) error {
	cfg := a.Config
	exchangeRepo := repository.NewChatExchangeRepository(a.DB)
	contactRepo := repository.NewContactRequestRepository(a.DB)

	a.ExchangeWorker = worker.NewPersistWorker[model.ChatExchange](a.MQConn, cfg.RabbitMQ.ChatExchangeQueue, exchangeRepo.Create, a.Log)
	a.ExchangeWorker.OnResult(consumed)
	if err := a.ExchangeWorker.Start(ctx); err != nil {
		return fmt.Errorf("start chat exchange worker failed: %w", err)
	}

	a.ContactWorker = worker.NewPersistWorker[model.ContactRequest](a.MQConn, cfg.RabbitMQ.ContactQueue, contactRepo.Create, a.Log)
	a.ContactWorker.OnResult(consumed)
	if err := a.ContactWorker.Start(ctx); err != nil {
		return fmt.Errorf("start contact worker failed: %w", err)
	}
	return nil
}

func consumed(queue string, ok bool) {
	observability.ObserveQueue(queue, "consume", ok)
}

func (a *App) Close() error {
	var closeErr error
	if a.ExchangeWorker != nil {
		a.ExchangeWorker.Close()
	}
	if a.ContactWorker != nil {
		a.ContactWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			closeErr = err
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return closeErr
}
