package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-screener/internal/export"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

// fakeExtractor reads "name;location;skill,skill" documents.
type fakeExtractor struct{}

func (fakeExtractor) Extract(ctx context.Context, doc services.Document) (*models.Resume, error) {
	parts := strings.Split(string(doc.Data), ";")
	if parts[0] == "fail" {
		return nil, errors.New("model returned garbage")
	}
	r := &models.Resume{PersonalInfo: &models.PersonalInfo{Name: parts[0], Email: parts[0] + "@example.com"}}
	if len(parts) > 1 {
		r.PersonalInfo.Location = parts[1]
	}
	if len(parts) > 2 {
		r.Skills = datatypes.JSONSlice[string](strings.Split(parts[2], ","))
	}
	r.Normalize()
	return r, nil
}

// fakeMatcher scores by the number of skills mentioned in the job
// description.
type fakeMatcher struct {
	err error
}

func (m fakeMatcher) Match(ctx context.Context, jd string, resumes []models.Resume) ([]models.Resume, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Resume, len(resumes))
	for i := range resumes {
		out[i] = resumes[i].Clone()
		score := 0
		for _, s := range out[i].Skills {
			if strings.Contains(strings.ToLower(jd), s) {
				score += 40
			}
		}
		out[i].SetMatch(score, fmt.Sprintf("%d skills", score/40))
	}
	return out, nil
}

type testApp struct {
	app        *fiber.App
	repo       repositories.ResumeRepository
	collection *repositories.Collection
}

func newTestApp(t *testing.T, matcher services.MatchService) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "resumes.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Resume{}, &models.ResumeSkill{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	repo := repositories.NewResumeRepository(db)
	collection := repositories.NewCollection()
	storage := services.NewStorageService(t.TempDir(), "http://localhost:3000")
	parser := services.NewDocumentParser()
	worker := services.NewNoopIndexWorker()

	ingest := services.NewIngestService(fakeExtractor{}, storage, repo, collection, worker, 2, 1<<20, log)
	resumes := services.NewResumeService(repo, collection, storage, matcher, worker, log)
	search := services.NewSearchService(repo, collection, nil, nil, log)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Register(app, Handlers{
		Upload: NewUploadHandler(ingest, 1<<20),
		Resume: NewResumeHandler(repo, collection, resumes),
		Search: NewSearchHandler(search),
		Match:  NewMatchHandler(resumes, collection, parser),
		Export: NewExportHandler(collection),
		File:   NewFileHandler(storage),
	})

	return &testApp{app: app, repo: repo, collection: collection}
}

type upload struct {
	field, filename, contentType, body string
}

func multipartRequest(t *testing.T, target string, uploads []upload, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, u.field, u.filename))
		h.Set("Content-Type", u.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(u.body))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (a *testApp) get(t *testing.T, target string) (*http.Response, []byte) {
	return a.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func (a *testApp) seed(t *testing.T, docs ...string) []models.Resume {
	t.Helper()
	uploads := make([]upload, len(docs))
	for i, d := range docs {
		uploads[i] = upload{"files", fmt.Sprintf("cv%d.txt", i), "text/plain", d}
	}
	resp, body := a.do(t, multipartRequest(t, "/api/v1/resumes", uploads, nil))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	var out models.UploadResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Resumes
}

func names(resumes []models.Resume) []string {
	out := make([]string, len(resumes))
	for i := range resumes {
		out[i] = resumes[i].Name()
	}
	return out
}

func decodeList(t *testing.T, body []byte) models.ResumeListResponse {
	t.Helper()
	var out models.ResumeListResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestUploadAndList(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})

	resumes := a.seed(t, "anna;Berlin;Go,SQL", "ben;Paris;React")
	require.Len(t, resumes, 2)
	assert.Equal(t, []string{"go", "sql"}, []string(resumes[0].Skills))
	assert.Contains(t, resumes[0].FileURL, "http://localhost:3000/files/")

	resp, body := a.get(t, "/api/v1/resumes")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeList(t, body)
	assert.Equal(t, 2, list.Total)
	assert.False(t, list.Ranked)
	assert.Equal(t, []string{"anna", "ben"}, names(list.Resumes))

	resp, body = a.get(t, "/api/v1/resumes?q=REACT")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"ben"}, names(decodeList(t, body).Resumes))

	resp, body = a.get(t, "/api/v1/resumes?category=location&value=Berlin")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"anna"}, names(decodeList(t, body).Resumes))

	resp, body = a.get(t, "/api/v1/resumes?category=location&value=berlin")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, body).Resumes)

	resp, _ = a.get(t, "/api/v1/resumes?category=salary&value=1")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = a.get(t, "/api/v1/resumes/all")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var all []models.Resume
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Equal(t, []string{"ben", "anna"}, names(all))
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})

	resp, body := a.do(t, multipartRequest(t, "/api/v1/resumes", []upload{
		{"files", "a.txt", "text/plain", "anna"},
		{"files", "b.zip", "application/zip", "PK"},
	}, nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "b.zip")
	assert.Zero(t, a.collection.Len())
}

func TestUploadBatchFailure(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})

	resp, body := a.do(t, multipartRequest(t, "/api/v1/resumes", []upload{
		{"files", "a.txt", "text/plain", "anna"},
		{"files", "bad.txt", "text/plain", "fail"},
	}, nil))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var errBody models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Equal(t, "bad.txt", errBody.File)
	assert.Zero(t, a.collection.Len())
}

func TestUploadWithoutFiles(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})

	resp, _ := a.do(t, multipartRequest(t, "/api/v1/resumes", nil, map[string]string{"x": "y"}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFilters(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	a.seed(t, "anna;Berlin;Go,SQL", "ben;Paris;go", "carla;;")

	resp, body := a.get(t, "/api/v1/resumes/filters")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var vocab map[string][]string
	require.NoError(t, json.Unmarshal(body, &vocab))
	assert.Equal(t, []string{"Berlin", "Paris"}, vocab["location"])
	assert.Equal(t, []string{"go", "sql"}, vocab["skill"])
}

func TestGetAndDelete(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	resumes := a.seed(t, "anna;Berlin;Go", "ben;Paris;React")
	id := resumes[0].ID.String()

	resp, body := a.get(t, "/api/v1/resumes/"+id)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "anna")

	resp, _ = a.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/"+id, nil))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = a.get(t, "/api/v1/resumes/"+id)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/"+id, nil))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = a.get(t, "/api/v1/resumes/not-a-uuid")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	_, body = a.get(t, "/api/v1/resumes")
	assert.Equal(t, []string{"ben"}, names(decodeList(t, body).Resumes))
}

func TestMatchRanksCollection(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	a.seed(t, "anna;Berlin;sql", "ben;Paris;go,react", "carla;Rome;go")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(`{"jobDescription":"Go and React developer"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := a.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	list := decodeList(t, body)
	assert.True(t, list.Ranked)
	assert.Equal(t, []string{"ben", "carla", "anna"}, names(list.Resumes))
	assert.Equal(t, 80, list.Resumes[0].Score())

	// ranking sticks for later views
	_, body = a.get(t, "/api/v1/resumes?q=a")
	assert.Equal(t, []string{"ben", "carla", "anna"}, names(decodeList(t, body).Resumes))
}

func TestMatchWithJobDescriptionFile(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	a.seed(t, "anna;Berlin;sql", "ben;Paris;go")

	resp, body := a.do(t, multipartRequest(t, "/api/v1/match", []upload{
		{"jdFile", "jd.txt", "text/plain", "We need SQL"},
	}, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, []string{"anna", "ben"}, names(decodeList(t, body).Resumes))
}

func TestMatchErrors(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(`{"jobDescription":"Go"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := a.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	failing := newTestApp(t, fakeMatcher{err: errors.New("model down")})
	failing.seed(t, "anna;Berlin;go")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(`{"jobDescription":"Go"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = failing.do(t, req)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	snapshot, ranked := failing.collection.Snapshot()
	assert.False(t, ranked)
	assert.False(t, snapshot[0].HasMatch())
}

func TestExport(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	a.seed(t, "anna;Berlin;go", "ben;Paris;react")

	resp, body := a.get(t, "/api/v1/export?category=location&value=Paris&filename=paris&sheet=Candidates")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="paris.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, export.Columns, rows[0])
	assert.Equal(t, "ben", rows[1][0])
	assert.Equal(t, "Paris", rows[1][2])
}

func TestExportNothingToExport(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	a.seed(t, "anna;Berlin;go")

	resp, body := a.get(t, "/api/v1/export?q=nobody")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "nothing to export")
}

func TestSkillSearch(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	a.seed(t, "anna;Berlin;go", "ben;Paris;react", "carla;Rome;rust")

	resp, body := a.get(t, "/api/v1/search?skills=Go,%20React")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var found []models.Resume
	require.NoError(t, json.Unmarshal(body, &found))
	assert.Equal(t, []string{"ben", "anna"}, names(found))

	resp, _ = a.get(t, "/api/v1/search")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSimilarDisabled(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})

	resp, _ := a.get(t, "/api/v1/resumes/similar?q=go")
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)
}

func TestServeHostedFile(t *testing.T) {
	a := newTestApp(t, fakeMatcher{})
	resumes := a.seed(t, "anna;Berlin;go")

	path := strings.TrimPrefix(resumes[0].FileURL, "http://localhost:3000")
	resp, body := a.get(t, path)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "anna;Berlin;go", string(body))
	assert.Equal(t, services.MimeText, resp.Header.Get("Content-Type"))

	resp, _ = a.get(t, "/files/missing.pdf")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
