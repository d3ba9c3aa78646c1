package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const resumeSchema = `{
  "personalInfo": {
    "name": "",
    "email": "",
    "phone": "",
    "location": ""
  },
  "education": [
    {
      "degree": "",
      "institution": "",
      "year": "",
      "gpa": ""
    }
  ],
  "experience": [
    {
      "title": "",
      "company": "",
      "duration": "",
      "responsibilities": []
    }
  ],
  "projects": [
    {
      "name": "",
      "description": "",
      "technologies": []
    }
  ],
  "skills": [],
  "certifications": []
}`

// BuildExtractionPrompt creates the prompt turning a resume into the fixed
// JSON schema. content is empty when the document travels as inline data.
func (pb *PromptBuilder) BuildExtractionPrompt(content string) string {
	prompt := fmt.Sprintf(`Analyze the following resume content and extract key information in the following JSON format.
Respond with the JSON object only, without any other text, markdown or code fences.
Use an empty string for any value you cannot find and an empty array for missing lists.

%s

Resume content:
`, resumeSchema)

	if content == "" {
		return prompt + "(attached document)"
	}
	return prompt + content
}

// BuildMatchPrompt creates the prompt scoring one resume against a job
// description.
func (pb *PromptBuilder) BuildMatchPrompt(jobDescription string, resume *models.Resume) string {
	experience := make([]string, 0, len(resume.Experience))
	for _, exp := range resume.Experience {
		experience = append(experience, fmt.Sprintf("%s at %s - %s",
			exp.Title, exp.Company, strings.Join(exp.Responsibilities, ", ")))
	}

	return fmt.Sprintf(`Compare the following job description with the resume and provide a matching score between 0 and 100.
Also provide a brief explanation of the match. Format the response as JSON:
{
  "score": number,
  "explanation": "string"
}

Job Description:
%s

Resume:
Name: %s
Skills: %s
Experience: %s`,
		strings.TrimSpace(jobDescription),
		resume.Name(),
		strings.Join(resume.Skills, ", "),
		strings.Join(experience, "\n"))
}

// BuildEmbeddingText flattens a resume into the text that gets embedded for
// similarity search.
func (pb *PromptBuilder) BuildEmbeddingText(resume *models.Resume) string {
	var parts []string
	if name := resume.Name(); name != "" {
		parts = append(parts, name)
	}
	if loc := resume.Location(); loc != "" {
		parts = append(parts, "Location: "+loc)
	}
	if len(resume.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(resume.Skills, ", "))
	}
	for _, exp := range resume.Experience {
		parts = append(parts, fmt.Sprintf("%s at %s. %s", exp.Title, exp.Company, strings.Join(exp.Responsibilities, " ")))
	}
	for _, p := range resume.Projects {
		parts = append(parts, fmt.Sprintf("Project %s: %s (%s)", p.Name, p.Description, strings.Join(p.Technologies, ", ")))
	}
	for _, edu := range resume.Education {
		parts = append(parts, fmt.Sprintf("%s, %s", edu.Degree, edu.Institution))
	}
	if len(resume.Certifications) > 0 {
		parts = append(parts, "Certifications: "+strings.Join(resume.Certifications, ", "))
	}
	return strings.Join(parts, "\n")
}
