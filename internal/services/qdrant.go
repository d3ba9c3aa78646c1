package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// ResumeIndex stores one embedding per resume for similarity search.
type ResumeIndex interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, resumeID uuid.UUID, embedding []float32, name string) error
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
	Delete(ctx context.Context, resumeID uuid.UUID) error
}

type SearchResult struct {
	ResumeID uuid.UUID
	Score    float32
}

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, log *zap.Logger) (ResumeIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one from the URL
	port := 6334
	if p := parsed.Port(); p != "" && p != "6333" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
		logger:         log.Named("qdrant"),
	}, nil
}

// InitCollection implements ResumeIndex.
func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Info("collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("collection created", zap.String("collection", q.collectionName))
	return nil
}

// Upsert implements ResumeIndex. The point id is the resume id, so
// re-indexing a resume replaces its vector.
func (q *qdrantIndex) Upsert(ctx context.Context, resumeID uuid.UUID, embedding []float32, name string) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(resumeID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"resume_id": resumeID.String(),
			"name":      name,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Search implements ResumeIndex.
func (q *qdrantIndex) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		raw, ok := point.Payload["resume_id"]
		if !ok {
			continue
		}
		val, ok := raw.GetKind().(*qdrant.Value_StringValue)
		if !ok {
			continue
		}
		id, err := uuid.Parse(val.StringValue)
		if err != nil {
			q.logger.Warn("skipping point with invalid resume id", zap.String("resume_id", val.StringValue))
			continue
		}
		results = append(results, SearchResult{ResumeID: id, Score: point.Score})
	}

	return results, nil
}

// Delete implements ResumeIndex.
func (q *qdrantIndex) Delete(ctx context.Context, resumeID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("resume_id", resumeID.String()),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}

	return nil
}
