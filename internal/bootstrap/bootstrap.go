// Package bootstrap wires the store, the collection and the services from
// configuration. It is shared by the HTTP server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Repo        repositories.ResumeRepository
	Collection  *repositories.Collection
	Storage     services.StorageService
	Parser      services.DocumentParser
	Gemini      services.GeminiService
	IndexWorker services.IndexWorker
	Ingest      services.IngestService
	Resumes     services.ResumeService
	Search      services.SearchService

	redis  *redis.Client
	logger *zap.Logger
}

// New connects every backend and loads the collection from the store. The
// Redis cache and the Qdrant index are optional: when they cannot be
// reached the app runs without them.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, logger: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.Repo = repositories.NewResumeRepository(db)

	a.Collection, err = repositories.LoadCollection(ctx, a.Repo)
	if err != nil {
		return nil, err
	}
	log.Info("collection loaded", zap.Int("resumes", a.Collection.Len()))

	a.Storage, err = newStorage(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := a.Storage.EnsureUploadDir(ctx); err != nil {
		return nil, err
	}
	log.Info("storage ready", zap.String("backend", cfg.Storage.Backend))

	a.Gemini, err = services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini: %w", err)
	}
	a.Parser = services.NewDocumentParser()

	var cache services.ExtractionCache
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, extraction cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = a.redis.Close()
			a.redis = nil
		} else {
			cache = services.NewRedisExtractionCache(a.redis, cfg.Redis.CacheTTL)
			log.Info("extraction cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var index services.ResumeIndex
	a.IndexWorker = services.NewNoopIndexWorker()
	if cfg.Qdrant.Enabled {
		index, err = services.NewQdrantIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err == nil {
			err = index.InitCollection(ctx)
		}
		if err != nil {
			log.Warn("qdrant unavailable, similarity search disabled", zap.Error(err))
			index = nil
		} else {
			a.IndexWorker = services.NewIndexWorker(a.Gemini, index, cfg.Worker.IndexConcurrency, log)
		}
	}

	extractor := services.NewResumeExtractor(a.Gemini, a.Parser, cache, log)
	matcher := services.NewMatchService(a.Gemini, cfg.Worker.MatchConcurrency, log)

	a.Ingest = services.NewIngestService(
		extractor,
		a.Storage,
		a.Repo,
		a.Collection,
		a.IndexWorker,
		cfg.Worker.ExtractConcurrency,
		cfg.Storage.MaxFileSize,
		log,
	)
	a.Resumes = services.NewResumeService(a.Repo, a.Collection, a.Storage, matcher, a.IndexWorker, log)
	a.Search = services.NewSearchService(a.Repo, a.Collection, a.Gemini, index, log)

	return a, nil
}

func newStorage(cfg *config.Config, log *zap.Logger) (services.StorageService, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return services.NewStorageService(cfg.Storage.UploadPath, cfg.Server.PublicBaseURL), nil
	case "minio":
		return services.NewMinIOStorage(
			cfg.MinIO.Endpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket,
			cfg.MinIO.UseSSL,
			cfg.Server.PublicBaseURL,
			log,
		)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

// Close stops the background workers and releases connections.
func (a *App) Close() {
	if a.IndexWorker != nil {
		a.IndexWorker.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
