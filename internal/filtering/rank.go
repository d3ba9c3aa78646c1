package filtering

import (
	"sort"

	"alfredoptarigan/resume-screener/internal/models"
)

// Rank sorts resumes in place by descending match score. The sort is stable,
// so equal scores keep their collection order; unscored resumes count as 0.
func Rank(resumes []models.Resume) {
	sort.SliceStable(resumes, func(i, j int) bool {
		return resumes[i].Score() > resumes[j].Score()
	})
}

// Visible returns the resumes matching state, in collection order, or in
// ranked order once a match pass has run.
func Visible(resumes []models.Resume, state State, ranked bool) []models.Resume {
	out := make([]models.Resume, 0, len(resumes))
	for i := range resumes {
		if Matches(&resumes[i], state) {
			out = append(out, resumes[i])
		}
	}
	if ranked {
		Rank(out)
	}
	return out
}
