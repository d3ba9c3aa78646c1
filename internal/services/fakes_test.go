package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type fakeGemini struct {
	mu        sync.Mutex
	text      func(prompt string) (string, error)
	document  func(prompt string, data []byte, mimeType string) (string, error)
	embedding func(text string) ([]float32, error)

	textCalls     int
	documentCalls int
	embedCalls    int
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.embedCalls++
	f.mu.Unlock()
	if f.embedding == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return f.embedding(text)
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	f.textCalls++
	f.mu.Unlock()
	if f.text == nil {
		return "", errors.New("unexpected GenerateText call")
	}
	return f.text(prompt)
}

func (f *fakeGemini) GenerateFromDocument(ctx context.Context, prompt string, data []byte, mimeType string, temperature float32) (string, error) {
	f.mu.Lock()
	f.documentCalls++
	f.mu.Unlock()
	if f.document == nil {
		return "", errors.New("unexpected GenerateFromDocument call")
	}
	return f.document(prompt, data, mimeType)
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]models.Resume
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]models.Resume{}}
}

func (c *memCache) Get(ctx context.Context, checksum string) (*models.Resume, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[checksum]
	if !ok {
		return nil, false, nil
	}
	out := r.Clone()
	return &out, true, nil
}

func (c *memCache) Set(ctx context.Context, checksum string, resume *models.Resume) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[checksum] = resume.Clone()
	return nil
}

type fakeExtractor struct {
	extract func(ctx context.Context, doc Document) (*models.Resume, error)
	mu      sync.Mutex
	calls   []string
}

func (f *fakeExtractor) Extract(ctx context.Context, doc Document) (*models.Resume, error) {
	f.mu.Lock()
	f.calls = append(f.calls, doc.Filename)
	f.mu.Unlock()
	return f.extract(ctx, doc)
}

type fakeIndex struct {
	mu       sync.Mutex
	vectors  map[uuid.UUID][]float32
	results  []SearchResult
	upserted chan uuid.UUID
	deleted  chan uuid.UUID
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		vectors:  map[uuid.UUID][]float32{},
		upserted: make(chan uuid.UUID, 10),
		deleted:  make(chan uuid.UUID, 10),
	}
}

func (f *fakeIndex) InitCollection(ctx context.Context) error { return nil }

func (f *fakeIndex) Upsert(ctx context.Context, resumeID uuid.UUID, embedding []float32, name string) error {
	f.mu.Lock()
	f.vectors[resumeID] = embedding
	f.mu.Unlock()
	f.upserted <- resumeID
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	return f.results, nil
}

func (f *fakeIndex) Delete(ctx context.Context, resumeID uuid.UUID) error {
	f.mu.Lock()
	delete(f.vectors, resumeID)
	f.mu.Unlock()
	f.deleted <- resumeID
	return nil
}

type recordingWorker struct {
	mu   sync.Mutex
	jobs []IndexJob
}

func (w *recordingWorker) Start(ctx context.Context) {}
func (w *recordingWorker) Stop()                     {}
func (w *recordingWorker) Enqueue(job IndexJob) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobs = append(w.jobs, job)
}

func newTestRepository(t *testing.T) repositories.ResumeRepository {
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

	return repositories.NewResumeRepository(db)
}

func person(name string, skills ...string) *models.Resume {
	r := &models.Resume{
		PersonalInfo: &models.PersonalInfo{Name: name, Email: name + "@example.com"},
	}
	r.Skills = append(r.Skills, skills...)
	r.Normalize()
	return r
}
