package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

var ErrResumeNotFound = errors.New("resume not found")

type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	CreateBatch(ctx context.Context, resumes []models.Resume) error
	FindAll(ctx context.Context) ([]models.Resume, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Resume, error)
	FindBySkills(ctx context.Context, skills []string) ([]models.Resume, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateMatches(ctx context.Context, resumes []models.Resume) error
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	batch := []models.Resume{*resume}
	if err := r.CreateBatch(ctx, batch); err != nil {
		return err
	}

	*resume = batch[0]
	return nil
}

// CreateBatch inserts every resume and its skill index in one transaction.
func (r *resumeRepository) CreateBatch(ctx context.Context, resumes []models.Resume) error {
	if len(resumes) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&resumes).Error; err != nil {
			return err
		}

		var skills []models.ResumeSkill
		for _, resume := range resumes {
			skills = append(skills, skillRows(resume)...)
		}
		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create resumes: %w", err)
	}

	return nil
}

// FindAll implements ResumeRepository. Newest first.
func (r *resumeRepository) FindAll(ctx context.Context) ([]models.Resume, error) {
	var resumes []models.Resume
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("failed to find resumes: %w", err)
	}

	return resumes, nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResumeNotFound
		}

		return nil, fmt.Errorf("failed to find resume: %w", err)
	}

	return &resume, nil
}

// FindBySkills returns resumes holding any of the given skills, compared
// case-insensitively. Newest first.
func (r *resumeRepository) FindBySkills(ctx context.Context, skills []string) ([]models.Resume, error) {
	var wanted []string
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			wanted = append(wanted, s)
		}
	}
	if len(wanted) == 0 {
		return []models.Resume{}, nil
	}

	sub := r.db.Model(&models.ResumeSkill{}).Select("resume_id").Where("skill IN ?", wanted)

	var resumes []models.Resume
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("created_at DESC").
		Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("failed to find resumes by skills: %w", err)
	}

	return resumes, nil
}

// Delete removes the resume and its skill index. Deleting an unknown id is
// not an error; the bool reports whether a row was removed.
func (r *resumeRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resume_id = ?", id).Delete(&models.ResumeSkill{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Resume{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete resume: %w", err)
	}

	return deleted, nil
}

// UpdateMatches writes score and explanation for every resume in one
// transaction. Rows deleted in the meantime are skipped.
func (r *resumeRepository) UpdateMatches(ctx context.Context, resumes []models.Resume) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, resume := range resumes {
			if !resume.HasMatch() {
				continue
			}
			if err := tx.Model(&models.Resume{}).
				Where("id = ?", resume.ID).
				Updates(map[string]interface{}{
					"match_score":       *resume.MatchScore,
					"match_explanation": *resume.MatchExplanation,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update match results: %w", err)
	}

	return nil
}

func skillRows(resume models.Resume) []models.ResumeSkill {
	seen := make(map[string]struct{}, len(resume.Skills))
	rows := make([]models.ResumeSkill, 0, len(resume.Skills))
	for _, s := range resume.Skills {
		s = strings.ToLower(s)
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		rows = append(rows, models.ResumeSkill{ResumeID: resume.ID, Skill: s})
	}
	return rows
}
