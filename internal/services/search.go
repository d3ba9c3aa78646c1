package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

var (
	ErrNoSkills       = errors.New("skills parameter is required")
	ErrEmptyQuery     = errors.New("query is required")
	ErrSearchDisabled = errors.New("similarity search is not enabled")
)

type SearchService interface {
	// BySkills parses a comma separated skill list and returns the stored
	// resumes having any of them, newest first.
	BySkills(ctx context.Context, skills string) ([]models.Resume, error)
	Similar(ctx context.Context, query string, limit int) ([]models.SimilarResume, error)
}

type searchService struct {
	repo          repositories.ResumeRepository
	collection    *repositories.Collection
	geminiService GeminiService
	index         ResumeIndex
	logger        *zap.Logger
}

// NewSearchService builds the search service. index may be nil, which
// disables Similar.
func NewSearchService(
	repo repositories.ResumeRepository,
	collection *repositories.Collection,
	geminiService GeminiService,
	index ResumeIndex,
	log *zap.Logger,
) SearchService {
	return &searchService{
		repo:          repo,
		collection:    collection,
		geminiService: geminiService,
		index:         index,
		logger:        log.Named("search"),
	}
}

func ParseSkills(raw string) []string {
	var skills []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

func (s *searchService) BySkills(ctx context.Context, raw string) ([]models.Resume, error) {
	skills := ParseSkills(raw)
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}

	resumes, err := s.repo.FindBySkills(ctx, skills)
	if err != nil {
		return nil, fmt.Errorf("failed to search resumes: %w", err)
	}
	for i := range resumes {
		resumes[i].Normalize()
	}
	return resumes, nil
}

// Similar returns the resumes closest to the query text. Index hits that
// are no longer in the collection are skipped.
func (s *searchService) Similar(ctx context.Context, query string, limit int) ([]models.SimilarResume, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	embedding, err := s.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	hits, err := s.index.Search(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.SimilarResume, 0, len(hits))
	for _, hit := range hits {
		r, ok := s.collection.Get(hit.ResumeID)
		if !ok {
			s.logger.Debug("index hit not in collection", zap.String("resume_id", hit.ResumeID.String()))
			continue
		}
		results = append(results, models.SimilarResume{Score: hit.Score, Resume: r})
	}
	return results, nil
}
