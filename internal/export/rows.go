// Package export projects resumes into flat spreadsheet rows.
package export

import (
	"errors"
	"fmt"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

var ErrNothingToExport = errors.New("nothing to export")

// Columns is the header row, in output order.
var Columns = []string{
	"Name",
	"Email",
	"Location",
	"Phone",
	"Education",
	"Skills",
	"Experience",
	"Projects",
	"Certifications",
	"Resume URL",
}

type Row []string

// Rows projects resumes into one row each, keeping their order.
func Rows(resumes []models.Resume) []Row {
	rows := make([]Row, 0, len(resumes))
	for i := range resumes {
		rows = append(rows, project(&resumes[i]))
	}
	return rows
}

func project(r *models.Resume) Row {
	education := make([]string, 0, len(r.Education))
	for _, e := range r.Education {
		education = append(education, fmt.Sprintf("%s - %s (%s)", e.Degree, e.Institution, e.Year))
	}

	experience := make([]string, 0, len(r.Experience))
	for _, e := range r.Experience {
		experience = append(experience, fmt.Sprintf("%s at %s (%s)", e.Title, e.Company, e.Duration))
	}

	projects := make([]string, 0, len(r.Projects))
	for _, p := range r.Projects {
		projects = append(projects, fmt.Sprintf("%s: %s", p.Name, p.Description))
	}

	return Row{
		r.Name(),
		r.Email(),
		r.Location(),
		r.Phone(),
		strings.Join(education, "; "),
		strings.Join(r.Skills, ", "),
		strings.Join(experience, "; "),
		strings.Join(projects, "; "),
		strings.Join(r.Certifications, ", "),
		r.FileURL,
	}
}
