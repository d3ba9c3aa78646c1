package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

type IndexOp int

const (
	IndexUpsert IndexOp = iota
	IndexDelete
)

type IndexJob struct {
	Op       IndexOp
	ResumeID uuid.UUID
	Resume   *models.Resume
}

// IndexWorker keeps the similarity index in step with the collection in the
// background.
type IndexWorker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(job IndexJob)
}

type indexWorker struct {
	geminiService GeminiService
	index         ResumeIndex
	promptBuilder *PromptBuilder
	jobQueue      chan IndexJob
	concurrency   int
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
	logger        *zap.Logger
}

func NewIndexWorker(geminiService GeminiService, index ResumeIndex, concurrency int, log *zap.Logger) IndexWorker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &indexWorker{
		geminiService: geminiService,
		index:         index,
		promptBuilder: NewPromptBuilder(),
		jobQueue:      make(chan IndexJob, 100),
		concurrency:   concurrency,
		stopChan:      make(chan struct{}),
		logger:        log.Named("index_worker"),
	}
}

// Start implements IndexWorker.
func (w *indexWorker) Start(ctx context.Context) {
	w.logger.Info("starting index workers", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements IndexWorker.
func (w *indexWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping index workers")
		close(w.stopChan)
	})
	w.wg.Wait()
}

// Enqueue implements IndexWorker. Jobs are dropped once the worker stops.
func (w *indexWorker) Enqueue(job IndexJob) {
	select {
	case w.jobQueue <- job:
		w.logger.Debug("index job enqueued", zap.String("resume_id", job.ResumeID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, dropping index job", zap.String("resume_id", job.ResumeID.String()))
	}
}

func (w *indexWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.drain(ctx, workerID)
			return
		case <-ctx.Done():
			return
		case job := <-w.jobQueue:
			w.process(ctx, workerID, job)
		}
	}
}

// drain handles the jobs still buffered when the worker stops.
func (w *indexWorker) drain(ctx context.Context, workerID int) {
	for {
		select {
		case job := <-w.jobQueue:
			w.process(ctx, workerID, job)
		default:
			return
		}
	}
}

func (w *indexWorker) process(ctx context.Context, workerID int, job IndexJob) {
	if err := w.handle(ctx, job); err != nil {
		w.logger.Error("index job failed",
			zap.Int("worker", workerID),
			zap.String("resume_id", job.ResumeID.String()),
			zap.Error(err),
		)
	}
}

func (w *indexWorker) handle(ctx context.Context, job IndexJob) error {
	switch job.Op {
	case IndexDelete:
		return w.index.Delete(ctx, job.ResumeID)
	case IndexUpsert:
		if job.Resume == nil {
			return fmt.Errorf("upsert job without resume")
		}
		text := w.promptBuilder.BuildEmbeddingText(job.Resume)
		if text == "" {
			return nil
		}
		embedding, err := w.geminiService.GenerateEmbedding(ctx, text)
		if err != nil {
			return err
		}
		return w.index.Upsert(ctx, job.ResumeID, embedding, job.Resume.Name())
	default:
		return fmt.Errorf("unknown index op %d", job.Op)
	}
}

type noopIndexWorker struct{}

// NewNoopIndexWorker is used when the similarity index is disabled.
func NewNoopIndexWorker() IndexWorker { return noopIndexWorker{} }

func (noopIndexWorker) Start(context.Context) {}
func (noopIndexWorker) Stop()                 {}
func (noopIndexWorker) Enqueue(IndexJob)      {}
