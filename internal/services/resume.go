package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

// ResumeService runs the operations that touch the store, the collection
// and the hosted files together.
type ResumeService interface {
	Delete(ctx context.Context, id uuid.UUID) error
	RunMatch(ctx context.Context, jobDescription string) ([]models.Resume, error)
}

type resumeService struct {
	repo        repositories.ResumeRepository
	collection  *repositories.Collection
	storage     StorageService
	matcher     MatchService
	indexWorker IndexWorker
	logger      *zap.Logger
}

func NewResumeService(
	repo repositories.ResumeRepository,
	collection *repositories.Collection,
	storage StorageService,
	matcher MatchService,
	indexWorker IndexWorker,
	log *zap.Logger,
) ResumeService {
	if indexWorker == nil {
		indexWorker = NewNoopIndexWorker()
	}
	return &resumeService{
		repo:        repo,
		collection:  collection,
		storage:     storage,
		matcher:     matcher,
		indexWorker: indexWorker,
		logger:      log.Named("resumes"),
	}
}

// Delete removes the resume everywhere. Unknown ids are a no-op.
func (s *resumeService) Delete(ctx context.Context, id uuid.UUID) error {
	var fileKey string
	if r, ok := s.collection.Get(id); ok {
		fileKey = r.FileKey
	} else if r, err := s.repo.FindByID(ctx, id); err == nil {
		fileKey = r.FileKey
	} else if !errors.Is(err, repositories.ErrResumeNotFound) {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	removed := s.collection.Remove(id)
	if !deleted && !removed {
		return nil
	}

	if fileKey != "" {
		if err := s.storage.DeleteFile(ctx, fileKey); err != nil {
			s.logger.Warn("failed to delete hosted file", zap.String("key", fileKey), zap.Error(err))
		}
	}
	s.indexWorker.Enqueue(IndexJob{Op: IndexDelete, ResumeID: id})

	s.logger.Info("resume deleted", zap.String("id", id.String()))
	return nil
}

// RunMatch scores every resume in the collection. Scores reach the store
// and the collection only when the whole pass succeeds.
func (s *resumeService) RunMatch(ctx context.Context, jobDescription string) ([]models.Resume, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return nil, ErrEmptyJobDesc
	}

	snapshot, _ := s.collection.Snapshot()
	if len(snapshot) == 0 {
		return nil, ErrNoResumes
	}

	scored, err := s.matcher.Match(ctx, jobDescription, snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to match resumes: %w", err)
	}

	if err := s.repo.UpdateMatches(ctx, scored); err != nil {
		return nil, fmt.Errorf("failed to save match results: %w", err)
	}
	s.collection.ApplyMatch(scored)

	return scored, nil
}

// ReadJobDescription turns an uploaded job description file into text.
// Files without a text layer are read as raw text.
func ReadJobDescription(parser DocumentParser, data []byte, contentType string) string {
	if mediaType, err := NormalizeContentType(contentType); err == nil {
		if text, err := parser.ExtractText(data, mediaType); err == nil {
			return text
		}
	}
	return strings.TrimSpace(string(data))
}
