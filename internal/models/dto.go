package models

type UploadResponse struct {
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Resumes []Resume `json:"resumes"`
}

type ResumeListResponse struct {
	Total   int      `json:"total"`
	Visible int      `json:"visible"`
	Ranked  bool     `json:"ranked"`
	Resumes []Resume `json:"resumes"`
}

type SimilarResume struct {
	Score  float32 `json:"score"`
	Resume Resume  `json:"resume"`
}

type SimilarResponse struct {
	Query   string          `json:"query"`
	Results []SimilarResume `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	File  string `json:"file,omitempty"`
}
