package indexer

import (
	"context"
	"errors"
	"testing"

	"docquery-go/internal/config"
	"docquery-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedEmbedder struct {
	failures int
	calls    int
	vector   []float32
}

func (s *scriptedEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("embedding backend unavailable")
	}
	return s.vector, nil
}

type scriptedIndex struct {
	failures int
	calls    int
	upserts  []model.VectorEntry
}

func (s *scriptedIndex) Upsert(ctx context.Context, entry model.VectorEntry) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("index write rejected")
	}
	s.upserts = append(s.upserts, entry)
	return nil
}

func (s *scriptedIndex) DeleteStale(ctx context.Context, docID string, keep []string) error {
	return nil
}

type memFailureRepo struct {
	recorded []model.ChunkFailure
	cleared  []string
}

func (m *memFailureRepo) Record(failure *model.ChunkFailure) error {
	m.recorded = append(m.recorded, *failure)
	return nil
}

func (m *memFailureRepo) FindByDocument(docID string) ([]model.ChunkFailure, error) {
	return m.recorded, nil
}

func (m *memFailureRepo) DeleteByChunk(chunkID string) error {
	m.cleared = append(m.cleared, chunkID)
	return nil
}

func (m *memFailureRepo) DeleteByDocument(docID string) error {
	return nil
}

func testChunk() model.Chunk {
	return model.Chunk{
		ID:         "chunk-1",
		DocumentID: "doc-1",
		Content:    "chunk content",
		PageStart:  1,
		PageEnd:    2,
	}
}

func testIndexer(embedder *scriptedEmbedder, index *scriptedIndex, failures *memFailureRepo) *Indexer {
	return New(embedder, index, failures,
		config.EmbeddingConfig{Model: "text-embedding-v4"},
		config.IndexerConfig{MaxAttempts: 3, BackoffMillis: 1})
}

func TestIndexSuccess(t *testing.T) {
	embedder := &scriptedEmbedder{vector: []float32{0.1, 0.2}}
	index := &scriptedIndex{}
	failures := &memFailureRepo{}

	entry, err := testIndexer(embedder, index, failures).Index(context.Background(), testChunk())

	require.NoError(t, err)
	assert.Equal(t, "chunk-1", entry.ChunkID)
	assert.Equal(t, []float32{0.1, 0.2}, entry.Vector)
	assert.Equal(t, "text-embedding-v4", entry.ModelVersion)
	assert.Empty(t, failures.recorded)
	assert.Equal(t, []string{"chunk-1"}, failures.cleared)
}

func TestIndexRetriesTransientEmbeddingError(t *testing.T) {
	embedder := &scriptedEmbedder{failures: 2, vector: []float32{0.3}}
	index := &scriptedIndex{}
	failures := &memFailureRepo{}

	_, err := testIndexer(embedder, index, failures).Index(context.Background(), testChunk())

	require.NoError(t, err)
	assert.Equal(t, 3, embedder.calls)
	assert.Empty(t, failures.recorded)
	require.Len(t, index.upserts, 1)
}

func TestIndexTerminalEmbeddingFailure(t *testing.T) {
	embedder := &scriptedEmbedder{failures: 10}
	index := &scriptedIndex{}
	failures := &memFailureRepo{}

	_, err := testIndexer(embedder, index, failures).Index(context.Background(), testChunk())

	var embFailure *model.EmbeddingFailure
	require.ErrorAs(t, err, &embFailure)
	assert.Equal(t, "chunk-1", embFailure.ChunkID)
	assert.Equal(t, 3, embedder.calls)
	assert.Zero(t, index.calls, "no index write without an embedding")

	require.Len(t, failures.recorded, 1)
	rec := failures.recorded[0]
	assert.Equal(t, "embedding", rec.Stage)
	assert.Equal(t, "doc-1", rec.DocumentID)
	assert.Equal(t, 3, rec.Attempts)
}

func TestIndexTerminalWriteFailure(t *testing.T) {
	embedder := &scriptedEmbedder{vector: []float32{0.1}}
	index := &scriptedIndex{failures: 10}
	failures := &memFailureRepo{}

	_, err := testIndexer(embedder, index, failures).Index(context.Background(), testChunk())

	var writeFailure *model.IndexWriteFailure
	require.ErrorAs(t, err, &writeFailure)
	assert.Equal(t, "chunk-1", writeFailure.ChunkID)
	assert.Equal(t, 3, index.calls)

	require.Len(t, failures.recorded, 1)
	assert.Equal(t, "index_write", failures.recorded[0].Stage)
}

func TestIndexStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := &scriptedEmbedder{failures: 10}
	index := &scriptedIndex{}
	failures := &memFailureRepo{}

	_, err := testIndexer(embedder, index, failures).Index(ctx, testChunk())

	require.Error(t, err)
	assert.Equal(t, 1, embedder.calls, "cancellation must stop the retry loop")
}
