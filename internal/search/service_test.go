package search

import (
	"context"
	"errors"
	"testing"

	"docquery-go/internal/config"
	"docquery-go/internal/model"
	"docquery-go/pkg/es"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeSearcher struct {
	lastReq    es.SearchRequest
	candidates []model.Candidate
	err        error
}

func (f *fakeSearcher) Search(ctx context.Context, req es.SearchRequest) ([]model.Candidate, error) {
	f.lastReq = req
	return f.candidates, f.err
}

type fakeResolver struct {
	calls [][]string
}

func (f *fakeResolver) Resolve(ctx context.Context, assetIDs []string) []model.AssetRef {
	f.calls = append(f.calls, assetIDs)
	refs := make([]model.AssetRef, len(assetIDs))
	for i, id := range assetIDs {
		refs[i] = model.AssetRef{AssetID: id}
	}
	return refs
}

func retrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		TopK:             3,
		RecallMultiplier: 5,
		VectorWeight:     0.7,
		LexicalWeight:    0.3,
	}
}

func TestRetrieveHappyPath(t *testing.T) {
	searcher := &fakeSearcher{
		candidates: []model.Candidate{
			{Entry: model.VectorEntry{ChunkID: "c1", Content: "solar output", AssetIDs: []string{"a1"}}, VectorScore: 0.9},
			{Entry: model.VectorEntry{ChunkID: "c2", Content: "wind output"}, VectorScore: 0.2},
		},
	}
	resolver := &fakeResolver{}
	svc := NewService(&fakeEmbedder{vector: []float32{0.1, 0.2}}, searcher, resolver, retrievalConfig())

	results, err := svc.Retrieve(context.Background(), "solar", model.QueryFilter{}, 0)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ChunkID)

	assert.Equal(t, []float32{0.1, 0.2}, searcher.lastReq.Vector)
	assert.Equal(t, 15, searcher.lastReq.K, "recall should over-fetch topK times the multiplier")

	require.Len(t, resolver.calls, 1)
	assert.Equal(t, []string{"a1"}, resolver.calls[0])
	require.Len(t, results[0].Assets, 1)
	assert.Equal(t, "a1", results[0].Assets[0].AssetID)
	assert.Empty(t, results[1].Assets)
}

func TestRetrieveDegradesToLexicalOnEmbeddingFailure(t *testing.T) {
	searcher := &fakeSearcher{
		candidates: []model.Candidate{
			{Entry: model.VectorEntry{ChunkID: "c-miss", Content: "unrelated text"}},
			{Entry: model.VectorEntry{ChunkID: "c-hit", Content: "solar energy report"}},
		},
	}
	svc := NewService(&fakeEmbedder{err: errors.New("embedding service down")}, searcher, &fakeResolver{}, retrievalConfig())

	results, err := svc.Retrieve(context.Background(), "solar energy", model.QueryFilter{}, 0)

	require.NoError(t, err)
	assert.Nil(t, searcher.lastReq.Vector, "degraded recall must not carry a vector")
	require.Len(t, results, 2)
	assert.Equal(t, "c-hit", results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, results[0].VectorScore, 1e-9)
}

func TestRetrieveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(&fakeEmbedder{err: errors.New("cut short")}, &fakeSearcher{}, &fakeResolver{}, retrievalConfig())

	_, err := svc.Retrieve(ctx, "query", model.QueryFilter{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrieveRecallErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("index unavailable")}
	svc := NewService(&fakeEmbedder{vector: []float32{0.1}}, searcher, &fakeResolver{}, retrievalConfig())

	_, err := svc.Retrieve(context.Background(), "query", model.QueryFilter{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate recall failed")
}

func TestRetrieveReappliesFilterInMemory(t *testing.T) {
	searcher := &fakeSearcher{
		candidates: []model.Candidate{
			{Entry: model.VectorEntry{ChunkID: "keep", Content: "solar", Industries: []string{"energy"}}, VectorScore: 0.5},
			{Entry: model.VectorEntry{ChunkID: "drop", Content: "solar", Industries: []string{"tech"}}, VectorScore: 0.9},
		},
	}
	svc := NewService(&fakeEmbedder{vector: []float32{0.1}}, searcher, &fakeResolver{}, retrievalConfig())

	filter := model.QueryFilter{Industries: []string{"energy"}}
	results, err := svc.Retrieve(context.Background(), "solar", filter, 0)

	require.NoError(t, err)
	assert.Equal(t, filter, searcher.lastReq.Filter)
	require.Len(t, results, 1)
	assert.Equal(t, "keep", results[0].ChunkID)
}
