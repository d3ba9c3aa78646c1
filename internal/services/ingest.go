package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

var (
	ErrNoDocuments  = errors.New("no files uploaded")
	ErrFileTooLarge = errors.New("file too large")
)

// BatchError reports the document that made a batch fail. Nothing from the
// batch is kept when it is returned.
type BatchError struct {
	Filename string
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("failed to process %s: %v", e.Filename, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// IngestService turns uploaded documents into stored resumes.
type IngestService interface {
	IngestBatch(ctx context.Context, docs []Document) ([]models.Resume, error)
}

type ingestService struct {
	extractor   ResumeExtractor
	storage     StorageService
	repo        repositories.ResumeRepository
	collection  *repositories.Collection
	indexWorker IndexWorker
	concurrency int
	maxFileSize int64
	logger      *zap.Logger
}

func NewIngestService(
	extractor ResumeExtractor,
	storage StorageService,
	repo repositories.ResumeRepository,
	collection *repositories.Collection,
	indexWorker IndexWorker,
	concurrency int,
	maxFileSize int64,
	log *zap.Logger,
) IngestService {
	if concurrency <= 0 {
		concurrency = 1
	}
	if indexWorker == nil {
		indexWorker = NewNoopIndexWorker()
	}
	return &ingestService{
		extractor:   extractor,
		storage:     storage,
		repo:        repo,
		collection:  collection,
		indexWorker: indexWorker,
		concurrency: concurrency,
		maxFileSize: maxFileSize,
		logger:      log.Named("ingest"),
	}
}

// IngestBatch validates every document up front, then extracts them
// concurrently. The batch is all-or-nothing: on the first failure the
// remaining work is cancelled, stored files are removed and nothing is
// persisted.
func (s *ingestService) IngestBatch(ctx context.Context, docs []Document) ([]models.Resume, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	docs = append([]Document(nil), docs...)

	for i := range docs {
		contentType, err := NormalizeContentType(docs[i].ContentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", docs[i].Filename, err)
		}
		docs[i].ContentType = contentType
		if s.maxFileSize > 0 && int64(len(docs[i].Data)) > s.maxFileSize {
			return nil, fmt.Errorf("%s: %w (max %d bytes)", docs[i].Filename, ErrFileTooLarge, s.maxFileSize)
		}
	}

	s.logger.Info("ingesting batch", zap.Int("files", len(docs)))

	var (
		mu     sync.Mutex
		stored []string
	)
	resumes := make([]models.Resume, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range docs {
		i := i
		doc := docs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &BatchError{Filename: doc.Filename, Err: err}
			}

			key, err := s.storage.SaveFile(gctx, doc.Filename, doc.ContentType, doc.Data)
			if err != nil {
				return &BatchError{Filename: doc.Filename, Err: err}
			}
			mu.Lock()
			stored = append(stored, key)
			mu.Unlock()

			resume, err := s.extractor.Extract(gctx, doc)
			if err != nil {
				return &BatchError{Filename: doc.Filename, Err: err}
			}

			resume.FileKey = key
			resume.FileURL = s.storage.FileURL(key)
			resume.OriginalFileName = doc.Filename
			resume.Normalize()
			resumes[i] = *resume
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("batch failed", zap.Error(err))
		s.cleanup(stored)
		return nil, err
	}

	// createdAt keeps upload order inside the batch
	now := time.Now().UTC()
	for i := range resumes {
		resumes[i].ID = uuid.New()
		resumes[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
	}

	if err := s.repo.CreateBatch(ctx, resumes); err != nil {
		s.cleanup(stored)
		return nil, fmt.Errorf("failed to save resumes: %w", err)
	}

	s.collection.Add(resumes...)
	for i := range resumes {
		r := resumes[i].Clone()
		s.indexWorker.Enqueue(IndexJob{Op: IndexUpsert, ResumeID: r.ID, Resume: &r})
	}

	s.logger.Info("batch ingested", zap.Int("resumes", len(resumes)))
	return resumes, nil
}

// cleanup runs detached from the request context, which may already be
// cancelled.
func (s *ingestService) cleanup(keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range keys {
		if err := s.storage.DeleteFile(ctx, key); err != nil {
			s.logger.Warn("failed to remove stored file", zap.String("key", key), zap.Error(err))
		}
	}
}
