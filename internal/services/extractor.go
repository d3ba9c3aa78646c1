package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

// ResumeExtractor turns one document into a structured resume.
type ResumeExtractor interface {
	Extract(ctx context.Context, doc Document) (*models.Resume, error)
}

type resumeExtractor struct {
	geminiService GeminiService
	parser        DocumentParser
	cache         ExtractionCache
	promptBuilder *PromptBuilder
	logger        *zap.Logger
}

// NewResumeExtractor builds an extractor. cache may be nil.
func NewResumeExtractor(geminiService GeminiService, parser DocumentParser, cache ExtractionCache, log *zap.Logger) ResumeExtractor {
	return &resumeExtractor{
		geminiService: geminiService,
		parser:        parser,
		cache:         cache,
		promptBuilder: NewPromptBuilder(),
		logger:        log.Named("extractor"),
	}
}

type personalInfoPayload struct {
	Name     flexString `json:"name"`
	Email    flexString `json:"email"`
	Phone    flexString `json:"phone"`
	Location flexString `json:"location"`
}

type educationPayload struct {
	Degree      flexString `json:"degree"`
	Institution flexString `json:"institution"`
	Year        flexString `json:"year"`
	GPA         flexString `json:"gpa"`
}

type experiencePayload struct {
	Title            flexString  `json:"title"`
	Company          flexString  `json:"company"`
	Duration         flexString  `json:"duration"`
	Responsibilities flexStrings `json:"responsibilities"`
}

type projectPayload struct {
	Name         flexString  `json:"name"`
	Description  flexString  `json:"description"`
	Technologies flexStrings `json:"technologies"`
}

type resumePayload struct {
	PersonalInfo   *personalInfoPayload `json:"personalInfo"`
	Education      []educationPayload   `json:"education"`
	Experience     []experiencePayload  `json:"experience"`
	Projects       []projectPayload     `json:"projects"`
	Skills         flexStrings          `json:"skills"`
	Certifications flexStrings          `json:"certifications"`
}

func (p *resumePayload) toModel() *models.Resume {
	r := &models.Resume{
		Skills:         datatypes.JSONSlice[string](p.Skills),
		Certifications: datatypes.JSONSlice[string](p.Certifications),
	}

	if p.PersonalInfo != nil {
		r.PersonalInfo = &models.PersonalInfo{
			Name:     string(p.PersonalInfo.Name),
			Email:    string(p.PersonalInfo.Email),
			Phone:    string(p.PersonalInfo.Phone),
			Location: string(p.PersonalInfo.Location),
		}
	}
	for _, e := range p.Education {
		r.Education = append(r.Education, models.Education{
			Degree:      string(e.Degree),
			Institution: string(e.Institution),
			Year:        string(e.Year),
			GPA:         string(e.GPA),
		})
	}
	for _, e := range p.Experience {
		r.Experience = append(r.Experience, models.Experience{
			Title:            string(e.Title),
			Company:          string(e.Company),
			Duration:         string(e.Duration),
			Responsibilities: []string(e.Responsibilities),
		})
	}
	for _, pr := range p.Projects {
		r.Projects = append(r.Projects, models.Project{
			Name:         string(pr.Name),
			Description:  string(pr.Description),
			Technologies: []string(pr.Technologies),
		})
	}

	r.Normalize()
	return r
}

// Extract implements ResumeExtractor. Text-bearing documents are sent as
// text; everything else goes to the model as inline bytes.
func (e *resumeExtractor) Extract(ctx context.Context, doc Document) (*models.Resume, error) {
	key := doc.Checksum()
	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("extraction cache lookup failed", zap.String("file", doc.Filename), zap.Error(err))
		} else if ok {
			e.logger.Debug("extraction cache hit", zap.String("file", doc.Filename))
			return cached, nil
		}
	}

	text, err := e.parser.ExtractText(doc.Data, doc.ContentType)

	var response string
	switch {
	case err == nil:
		prompt := e.promptBuilder.BuildExtractionPrompt(text)
		e.logger.Debug("extraction request",
			zap.String("file", doc.Filename),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", logger.TruncateForLog(prompt, 200)),
		)
		response, err = e.geminiService.GenerateText(ctx, prompt, 0.1)
	case errors.Is(err, ErrNoTextContent) && doc.ContentType != MimeDOCX && doc.ContentType != MimeText:
		e.logger.Debug("extraction request with inline document",
			zap.String("file", doc.Filename),
			zap.String("content_type", doc.ContentType),
			zap.Int("size", len(doc.Data)),
		)
		response, err = e.geminiService.GenerateFromDocument(ctx, e.promptBuilder.BuildExtractionPrompt(""), doc.Data, doc.ContentType, 0.1)
	default:
		return nil, fmt.Errorf("failed to read %s: %w", doc.Filename, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract resume from %s: %w", doc.Filename, err)
	}

	e.logger.Debug("extraction response",
		zap.String("file", doc.Filename),
		zap.String("response_preview", logger.TruncateForLog(response, 200)),
	)

	var payload resumePayload
	if err := parseJSONResponse(response, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse resume from %s: %w", doc.Filename, err)
	}

	resume := payload.toModel()

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, resume); err != nil {
			e.logger.Warn("extraction cache store failed", zap.String("file", doc.Filename), zap.Error(err))
		}
	}

	return resume, nil
}
