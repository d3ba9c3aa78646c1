package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
)

// Collection is the in-memory, insertion-ordered set of resumes the filter
// engine reads from. Readers always get copies.
type Collection struct {
	mu      sync.RWMutex
	resumes []models.Resume
	ranked  bool
}

// NewCollection seeds the collection in the given insertion order. Ranking is
// on when any seeded resume already carries a match.
func NewCollection(resumes ...models.Resume) *Collection {
	c := &Collection{}
	c.Add(resumes...)
	for i := range c.resumes {
		if c.resumes[i].HasMatch() {
			c.ranked = true
			break
		}
	}
	return c
}

// Add appends resumes, ignoring ids that are already present.
func (c *Collection) Add(resumes ...models.Resume) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := make(map[uuid.UUID]struct{}, len(c.resumes))
	for _, r := range c.resumes {
		existing[r.ID] = struct{}{}
	}
	for _, r := range resumes {
		if _, ok := existing[r.ID]; ok {
			continue
		}
		existing[r.ID] = struct{}{}
		c.resumes = append(c.resumes, r.Clone())
	}
}

// Remove deletes the resume with id. Unknown ids are a no-op.
func (c *Collection) Remove(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.resumes {
		if c.resumes[i].ID == id {
			c.resumes = append(c.resumes[:i], c.resumes[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Collection) Get(id uuid.UUID) (models.Resume, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.resumes {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return models.Resume{}, false
}

// Snapshot returns a copy of the resumes in insertion order and whether a
// match pass has ranked them.
func (c *Collection) Snapshot() ([]models.Resume, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Resume, len(c.resumes))
	for i, r := range c.resumes {
		out[i] = r.Clone()
	}
	return out, c.ranked
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resumes)
}

// ApplyMatch copies score and explanation from scored onto the resumes with
// the same id and turns ranking on. No other field changes.
func (c *Collection) ApplyMatch(scored []models.Resume) {
	byID := make(map[uuid.UUID]models.Resume, len(scored))
	for _, r := range scored {
		if r.HasMatch() {
			byID[r.ID] = r
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.resumes {
		if s, ok := byID[c.resumes[i].ID]; ok {
			c.resumes[i].SetMatch(*s.MatchScore, *s.MatchExplanation)
		}
	}
	c.ranked = true
}

// LoadCollection seeds a collection from the store. The store lists newest
// first, the collection keeps insertion order.
func LoadCollection(ctx context.Context, repo ResumeRepository) (*Collection, error) {
	resumes, err := repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load resumes: %w", err)
	}
	for i, j := 0, len(resumes)-1; i < j; i, j = i+1, j-1 {
		resumes[i], resumes[j] = resumes[j], resumes[i]
	}
	for i := range resumes {
		resumes[i].Normalize()
	}
	return NewCollection(resumes...), nil
}
