// Package indexer computes chunk embeddings and writes vector entries into
// the index, idempotently and with per-chunk failure isolation.
package indexer

import (
	"context"
	"time"

	"docquery-go/internal/config"
	"docquery-go/internal/model"
	"docquery-go/internal/repository"
	"docquery-go/pkg/embedding"
	"docquery-go/pkg/log"
)

// VectorIndex is the write side of the vector index consumed here. Upserts
// are keyed by chunk ID, so full-corpus re-ingestion never grows the index
// unboundedly.
type VectorIndex interface {
	Upsert(ctx context.Context, entry model.VectorEntry) error
	DeleteStale(ctx context.Context, docID string, keep []string) error
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// Indexer embeds chunks and upserts their vector entries.
type Indexer struct {
	embedder     embedding.Client
	index        VectorIndex
	failures     repository.ChunkFailureRepository
	modelVersion string
	maxAttempts  int
	backoff      time.Duration
}

// New creates an Indexer instance.
func New(embedder embedding.Client, index VectorIndex, failures repository.ChunkFailureRepository,
	embCfg config.EmbeddingConfig, ixCfg config.IndexerConfig) *Indexer {
	maxAttempts := ixCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := time.Duration(ixCfg.BackoffMillis) * time.Millisecond
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Indexer{
		embedder:     embedder,
		index:        index,
		failures:     failures,
		modelVersion: embCfg.Model,
		maxAttempts:  maxAttempts,
		backoff:      backoff,
	}
}

// Index embeds one chunk and upserts a vector entry keyed by its ID. Both
// steps retry with linear backoff up to the configured budget; a terminal
// failure is recorded and returned as EmbeddingFailure or IndexWriteFailure
// so the caller can continue with sibling chunks.
func (ix *Indexer) Index(ctx context.Context, chunk model.Chunk) (model.VectorEntry, error) {
	vector, attempts, err := ix.embedWithRetry(ctx, chunk)
	if err != nil {
		failure := &model.EmbeddingFailure{ChunkID: chunk.ID, Err: err}
		ix.recordFailure(chunk, "embedding", attempts, failure)
		return model.VectorEntry{}, failure
	}

	entry := model.NewVectorEntry(chunk, vector, ix.modelVersion)

	attempts = 0
	for attempts < ix.maxAttempts {
		attempts++
		err = ix.index.Upsert(ctx, entry)
		if err == nil {
			// Clear any failure record from a previous run.
			if derr := ix.failures.DeleteByChunk(chunk.ID); derr != nil {
				log.Warnf("[Indexer] failed to clear failure record for chunk %s: %v", chunk.ID, derr)
			}
			return entry, nil
		}
		log.Warnf("[Indexer] index write attempt %d/%d failed for chunk %s: %v", attempts, ix.maxAttempts, chunk.ID, err)
		if !ix.sleep(ctx, attempts) {
			break
		}
	}

	failure := &model.IndexWriteFailure{ChunkID: chunk.ID, Err: err}
	ix.recordFailure(chunk, "index_write", attempts, failure)
	return model.VectorEntry{}, failure
}

// DeleteStale removes a document's entries that are no longer produced by
// the current ingestion run.
func (ix *Indexer) DeleteStale(ctx context.Context, docID string, keep []string) error {
	return ix.index.DeleteStale(ctx, docID, keep)
}

func (ix *Indexer) embedWithRetry(ctx context.Context, chunk model.Chunk) ([]float32, int, error) {
	var err error
	attempts := 0
	for attempts < ix.maxAttempts {
		attempts++
		var vector []float32
		vector, err = ix.embedder.CreateEmbedding(ctx, chunk.Content)
		if err == nil {
			return vector, attempts, nil
		}
		log.Warnf("[Indexer] embedding attempt %d/%d failed for chunk %s: %v", attempts, ix.maxAttempts, chunk.ID, err)
		if !ix.sleep(ctx, attempts) {
			break
		}
	}
	return nil, attempts, err
}

// sleep waits one backoff interval, scaled by the attempt count. It returns
// false when the context is cancelled.
func (ix *Indexer) sleep(ctx context.Context, attempt int) bool {
	if attempt >= ix.maxAttempts {
		return false
	}
	timer := time.NewTimer(ix.backoff * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (ix *Indexer) recordFailure(chunk model.Chunk, stage string, attempts int, cause error) {
	rec := &model.ChunkFailure{
		ChunkID:    chunk.ID,
		DocumentID: chunk.DocumentID,
		Stage:      stage,
		Reason:     cause.Error(),
		Attempts:   attempts,
	}
	if err := ix.failures.Record(rec); err != nil {
		log.Errorf("[Indexer] failed to record chunk failure (chunk=%s): %v", chunk.ID, err)
	}
}
