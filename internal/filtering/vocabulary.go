package filtering

import (
	"sort"

	"alfredoptarigan/resume-screener/internal/models"
)

// Vocabulary holds, per category, the distinct non-empty values seen in a
// collection, sorted lexicographically.
type Vocabulary map[Category][]string

// BuildVocabulary scans every resume. The result depends only on the set of
// values present, never on insertion order.
func BuildVocabulary(resumes []models.Resume) Vocabulary {
	seen := make(map[Category]map[string]struct{}, len(Categories))
	for _, c := range Categories {
		seen[c] = make(map[string]struct{})
	}

	add := func(c Category, v string) {
		if v != "" {
			seen[c][v] = struct{}{}
		}
	}

	for i := range resumes {
		r := &resumes[i]
		add(Location, r.Location())
		for _, edu := range r.Education {
			add(Education, edu.Degree)
		}
		for _, s := range r.Skills {
			add(Skill, s)
		}
		for _, exp := range r.Experience {
			add(JobTitle, exp.Title)
			add(Company, exp.Company)
		}
		for _, cert := range r.Certifications {
			add(Certification, cert)
		}
	}

	vocab := make(Vocabulary, len(Categories))
	for _, c := range Categories {
		values := make([]string, 0, len(seen[c]))
		for v := range seen[c] {
			values = append(values, v)
		}
		sort.Strings(values)
		vocab[c] = values
	}
	return vocab
}

// Criteria flattens the vocabulary into selectable criteria, category by
// category.
func (v Vocabulary) Criteria() []Criterion {
	var out []Criterion
	for _, c := range Categories {
		for _, value := range v[c] {
			out = append(out, Criterion{Category: c, Value: value})
		}
	}
	return out
}
