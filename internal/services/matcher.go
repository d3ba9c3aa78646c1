package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

var (
	ErrNoResumes          = errors.New("no resumes to match")
	ErrEmptyJobDesc       = errors.New("job description is empty")
	ErrInvalidMatchResult = errors.New("invalid match result")
)

// MatchService scores resumes against a job description.
type MatchService interface {
	// Match returns copies of resumes carrying a score and explanation,
	// sorted by descending score. Either every resume is scored or an
	// error is returned.
	Match(ctx context.Context, jobDescription string, resumes []models.Resume) ([]models.Resume, error)
}

type matchService struct {
	geminiService GeminiService
	promptBuilder *PromptBuilder
	concurrency   int
	logger        *zap.Logger
}

func NewMatchService(geminiService GeminiService, concurrency int, log *zap.Logger) MatchService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &matchService{
		geminiService: geminiService,
		promptBuilder: NewPromptBuilder(),
		concurrency:   concurrency,
		logger:        log.Named("matcher"),
	}
}

type matchResult struct {
	Score       float64
	Explanation string
}

// Match implements MatchService.
func (m *matchService) Match(ctx context.Context, jobDescription string, resumes []models.Resume) ([]models.Resume, error) {
	if len(resumes) == 0 {
		return nil, ErrNoResumes
	}
	if jobDescription == "" {
		return nil, ErrEmptyJobDesc
	}

	m.logger.Info("matching resumes", zap.Int("count", len(resumes)))

	scored := make([]models.Resume, len(resumes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i := range resumes {
		i := i
		g.Go(func() error {
			r := resumes[i].Clone()
			result, err := m.score(gctx, jobDescription, &r)
			if err != nil {
				return fmt.Errorf("failed to match resume %s: %w", r.ID, err)
			}
			r.SetMatch(int(math.Round(result.Score)), result.Explanation)
			scored[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.Error("match pass failed", zap.Error(err))
		return nil, err
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score() > scored[b].Score()
	})

	return scored, nil
}

func (m *matchService) score(ctx context.Context, jobDescription string, resume *models.Resume) (*matchResult, error) {
	prompt := m.promptBuilder.BuildMatchPrompt(jobDescription, resume)

	response, err := m.geminiService.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("failed to generate match: %w", err)
	}

	m.logger.Debug("match response",
		zap.String("resume_id", resume.ID.String()),
		zap.String("response_preview", logger.TruncateForLog(response, 200)),
	)

	var raw map[string]any
	if err := parseJSONResponse(response, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse match response: %w", err)
	}

	score := coerceFloat(raw["score"])
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, fmt.Errorf("%w: score %v", ErrInvalidMatchResult, raw["score"])
	}

	return &matchResult{
		Score:       score,
		Explanation: coerceString(raw["explanation"]),
	}, nil
}
