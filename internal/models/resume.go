package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	GPA         string `json:"gpa"`
}

type Experience struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Resume is one parsed resume document. PersonalInfo is nil when the
// extraction returned no personal section at all.
type Resume struct {
	ID               uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	PersonalInfo     *PersonalInfo                   `gorm:"type:text;serializer:json" json:"personalInfo"`
	Education        datatypes.JSONSlice[Education]  `json:"education"`
	Experience       datatypes.JSONSlice[Experience] `json:"experience"`
	Projects         datatypes.JSONSlice[Project]    `json:"projects"`
	Skills           datatypes.JSONSlice[string]     `json:"skills"`
	Certifications   datatypes.JSONSlice[string]     `json:"certifications"`
	FileURL          string                          `gorm:"type:text" json:"fileUrl"`
	FileKey          string                          `gorm:"type:text" json:"-"`
	OriginalFileName string                          `gorm:"type:text" json:"originalFileName,omitempty"`
	MatchScore       *int                            `json:"matchScore,omitempty"`
	MatchExplanation *string                         `gorm:"type:text" json:"matchExplanation,omitempty"`
	CreatedAt        time.Time                       `json:"createdAt"`
}

func (Resume) TableName() string {
	return "resumes"
}

func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ResumeSkill indexes the normalized skills of a resume for store-side
// skill search.
type ResumeSkill struct {
	ResumeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Skill    string    `gorm:"primaryKey;index"`
}

func (ResumeSkill) TableName() string {
	return "resume_skills"
}

func (r *Resume) Name() string {
	if r.PersonalInfo == nil {
		return ""
	}
	return r.PersonalInfo.Name
}

func (r *Resume) Email() string {
	if r.PersonalInfo == nil {
		return ""
	}
	return r.PersonalInfo.Email
}

func (r *Resume) Phone() string {
	if r.PersonalInfo == nil {
		return ""
	}
	return r.PersonalInfo.Phone
}

func (r *Resume) Location() string {
	if r.PersonalInfo == nil {
		return ""
	}
	return r.PersonalInfo.Location
}

// HasMatch reports whether a match pass annotated this resume.
func (r *Resume) HasMatch() bool {
	return r.MatchScore != nil && r.MatchExplanation != nil
}

// Score returns the match score, 0 when the resume was never scored.
func (r *Resume) Score() int {
	if r.MatchScore == nil {
		return 0
	}
	return *r.MatchScore
}

// SetMatch sets score and explanation together. Scores are clamped to [0,100].
func (r *Resume) SetMatch(score int, explanation string) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	r.MatchScore = &score
	r.MatchExplanation = &explanation
}

func (r *Resume) ClearMatch() {
	r.MatchScore = nil
	r.MatchExplanation = nil
}

// Normalize lowercases skills and replaces every nil slice with an empty one.
func (r *Resume) Normalize() {
	skills := make(datatypes.JSONSlice[string], 0, len(r.Skills))
	for _, s := range r.Skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			skills = append(skills, s)
		}
	}
	r.Skills = skills

	if r.Education == nil {
		r.Education = datatypes.JSONSlice[Education]{}
	}
	if r.Experience == nil {
		r.Experience = datatypes.JSONSlice[Experience]{}
	}
	for i := range r.Experience {
		if r.Experience[i].Responsibilities == nil {
			r.Experience[i].Responsibilities = []string{}
		}
	}
	if r.Projects == nil {
		r.Projects = datatypes.JSONSlice[Project]{}
	}
	for i := range r.Projects {
		if r.Projects[i].Technologies == nil {
			r.Projects[i].Technologies = []string{}
		}
	}
	if r.Certifications == nil {
		r.Certifications = datatypes.JSONSlice[string]{}
	}
}

// Clone returns a deep copy so callers can mutate it without touching shared
// snapshots.
func (r Resume) Clone() Resume {
	out := r
	if r.PersonalInfo != nil {
		info := *r.PersonalInfo
		out.PersonalInfo = &info
	}
	out.Education = append(datatypes.JSONSlice[Education]{}, r.Education...)
	out.Experience = make(datatypes.JSONSlice[Experience], len(r.Experience))
	for i, exp := range r.Experience {
		exp.Responsibilities = append([]string{}, exp.Responsibilities...)
		out.Experience[i] = exp
	}
	out.Projects = make(datatypes.JSONSlice[Project], len(r.Projects))
	for i, p := range r.Projects {
		p.Technologies = append([]string{}, p.Technologies...)
		out.Projects[i] = p
	}
	out.Skills = append(datatypes.JSONSlice[string]{}, r.Skills...)
	out.Certifications = append(datatypes.JSONSlice[string]{}, r.Certifications...)
	if r.MatchScore != nil {
		score := *r.MatchScore
		out.MatchScore = &score
	}
	if r.MatchExplanation != nil {
		explanation := *r.MatchExplanation
		out.MatchExplanation = &explanation
	}
	return out
}
