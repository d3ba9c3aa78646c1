package filtering

import (
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

// Matches reports whether r is visible under state. Resumes without a
// personal section are never visible.
func Matches(r *models.Resume, state State) bool {
	if r == nil || r.PersonalInfo == nil {
		return false
	}
	return MatchesQuery(r, state.Query) && MatchesCriterion(r, state.Criterion)
}

// MatchesQuery is a case-insensitive substring test over name, email and
// skills.
func MatchesQuery(r *models.Resume, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(r.Name()), q) ||
		strings.Contains(strings.ToLower(r.Email()), q) {
		return true
	}
	for _, s := range r.Skills {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// MatchesCriterion uses case-sensitive exact equality, since criterion values
// come verbatim from the vocabulary.
func MatchesCriterion(r *models.Resume, c *Criterion) bool {
	if c == nil {
		return true
	}

	switch c.Category {
	case Location:
		return r.Location() == c.Value
	case Education:
		for _, edu := range r.Education {
			if edu.Degree == c.Value {
				return true
			}
		}
	case Skill:
		return contains(r.Skills, c.Value)
	case JobTitle:
		for _, exp := range r.Experience {
			if exp.Title == c.Value {
				return true
			}
		}
	case Company:
		for _, exp := range r.Experience {
			if exp.Company == c.Value {
				return true
			}
		}
	case Certification:
		return contains(r.Certifications, c.Value)
	}
	return false
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
