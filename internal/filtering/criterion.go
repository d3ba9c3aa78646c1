// Package filtering derives filter vocabularies from a resume collection and
// computes the ordered subset of resumes that match a filter state.
//
// Everything here is a pure function of its inputs: callers hand in a
// snapshot of the collection and get a fresh slice back.
package filtering

import (
	"errors"
	"fmt"
)

var ErrUnknownCategory = errors.New("unknown filter category")

// Category is the closed set of structured filter kinds.
type Category int

const (
	Location Category = iota
	Education
	Skill
	JobTitle
	Company
	Certification
)

// Categories lists every category in display order.
var Categories = []Category{Location, Education, Skill, JobTitle, Company, Certification}

func (c Category) String() string {
	switch c {
	case Location:
		return "location"
	case Education:
		return "education"
	case Skill:
		return "skill"
	case JobTitle:
		return "jobTitle"
	case Company:
		return "company"
	case Certification:
		return "certification"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory maps the wire name of a category back to its value.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) MarshalText() ([]byte, error) {
	if c < Location || c > Certification {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Criterion selects resumes whose field for Category equals Value exactly.
type Criterion struct {
	Category Category `json:"category"`
	Value    string   `json:"value"`
}

// State is the active filter: a free-text query ANDed with at most one
// structured criterion.
type State struct {
	Query     string     `json:"query"`
	Criterion *Criterion `json:"criterion,omitempty"`
}

// NewState builds a State from wire values. An empty category means no
// structured criterion.
func NewState(query, category, value string) (State, error) {
	state := State{Query: query}
	if category == "" {
		return state, nil
	}

	c, err := ParseCategory(category)
	if err != nil {
		return State{}, err
	}
	state.Criterion = &Criterion{Category: c, Value: value}
	return state, nil
}
