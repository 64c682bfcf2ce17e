package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ocrqa/internal/ai"
	appsvc "ocrqa/internal/app"
	"ocrqa/internal/blobstore"
	"ocrqa/internal/cache"
	"ocrqa/internal/chunker"
	"ocrqa/internal/config"
	"ocrqa/internal/embedstore"
	"ocrqa/internal/model"
	mysqlClient "ocrqa/internal/platform/mysql"
	rabbitmqClient "ocrqa/internal/platform/rabbitmq"
	redisClient "ocrqa/internal/platform/redis"
	"ocrqa/internal/repository"
	"ocrqa/internal/translate"
	"ocrqa/internal/vectorstore"
	"ocrqa/internal/vectorstore/memory"
	"ocrqa/internal/vectorstore/qdrant"
	"ocrqa/internal/worker"
)

type App struct {
	Config         *config.Config
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	DocumentWorker *worker.DocumentPersistWorker

	RAG   *appsvc.RAGService
	Files *appsvc.FileService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), mysqlClient.Options{
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		ConnMaxLifetime: time.Duration(cfg.MySQL.ConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, redisClient.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: time.Duration(cfg.Redis.DialTimeoutSeconds) * time.Second,
		PoolSize:    cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	documentRepo := repository.NewDocumentRepository(mysqlDB)
	documentWorker := worker.NewDocumentPersistWorker(mqConn, documentRepo, cfg.RabbitMQ.DocumentPersistQueue)
	if err := documentWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start document worker failed: %w", err)
	}

	ragService, err := buildRAGService(cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := blobstore.NewFSStore(cfg.Upload.BucketDir)
	if err != nil {
		return nil, fmt.Errorf("open bucket dir failed: %w", err)
	}
	documentCache := cache.NewDocumentCache(redisCli, time.Duration(cfg.Redis.DocumentTTLSeconds)*time.Second)
	documentPublisher := rabbitmqClient.NewDocumentPublisher(mqConn, cfg.RabbitMQ.DocumentPersistQueue)
	fileService := appsvc.NewFileService(blobs, documentRepo, documentPublisher, documentCache, cfg.Upload.AllowedTypes)

	return &App{
		Config:         cfg,
		MySQL:          mysqlDB,
		Redis:          redisCli,
		MQConn:         mqConn,
		DocumentWorker: documentWorker,
		RAG:            ragService,
		Files:          fileService,
		StartedAt:      time.Now(),
	}, nil
}

func buildRAGService(cfg *config.Config) (*appsvc.RAGService, error) {
	llm := ai.NewClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		ChatModel:      cfg.LLM.ChatModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
	})

	splitter, err := chunker.NewSplitter(chunker.Config{
		ChunkSize:    cfg.Splitter.ChunkSize,
		ChunkOverlap: cfg.Splitter.ChunkOverlap,
		Separators:   cfg.Splitter.Separators,
	})
	if err != nil {
		return nil, fmt.Errorf("build splitter failed: %w", err)
	}

	translator, err := translate.NewTranslator(llm, translate.Config{
		TargetLanguage: cfg.Translate.TargetLanguage,
		MaxInputChars:  cfg.Translate.MaxInputChars,
	})
	if err != nil {
		return nil, fmt.Errorf("build translator failed: %w", err)
	}

	var index vectorstore.Index
	switch cfg.Vector.Backend {
	case "qdrant":
		index = qdrant.New(qdrant.Config{
			URL:        cfg.Vector.Qdrant.URL,
			APIKey:     cfg.Vector.Qdrant.APIKey,
			Collection: cfg.Vector.Qdrant.Collection,
			Dimension:  cfg.Vector.Dimension,
			Metric:     cfg.Vector.Metric,
		})
	default:
		index = memory.New(cfg.Vector.Dimension)
	}

	store, err := embedstore.New(llm, index, embedstore.Config{Dimension: cfg.Vector.Dimension})
	if err != nil {
		return nil, fmt.Errorf("build embedding store failed: %w", err)
	}

	return appsvc.NewRAGService(store, splitter, translator, llm, cfg.Vector.TopK), nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DocumentWorker != nil {
		a.DocumentWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
