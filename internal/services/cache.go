package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"alfredoptarigan/resume-screener/internal/models"
)

const extractionKeyPrefix = "resume:extraction:"

// ExtractionCache remembers extraction results by document checksum.
type ExtractionCache interface {
	Get(ctx context.Context, checksum string) (*models.Resume, bool, error)
	Set(ctx context.Context, checksum string, resume *models.Resume) error
}

type redisExtractionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisExtractionCache(client *redis.Client, ttl time.Duration) ExtractionCache {
	return &redisExtractionCache{client: client, ttl: ttl}
}

// Get returns a fresh record with no id, file or match attached.
func (c *redisExtractionCache) Get(ctx context.Context, checksum string) (*models.Resume, bool, error) {
	data, err := c.client.Get(ctx, extractionKeyPrefix+checksum).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached extraction: %w", err)
	}

	var resume models.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached extraction: %w", err)
	}
	resume.ID = uuid.Nil
	resume.FileURL = ""
	resume.ClearMatch()
	resume.Normalize()
	return &resume, true, nil
}

func (c *redisExtractionCache) Set(ctx context.Context, checksum string, resume *models.Resume) error {
	data, err := json.Marshal(resume)
	if err != nil {
		return fmt.Errorf("failed to encode extraction: %w", err)
	}
	if err := c.client.Set(ctx, extractionKeyPrefix+checksum, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache extraction: %w", err)
	}
	return nil
}
