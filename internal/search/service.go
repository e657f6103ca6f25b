package search

import (
	"context"
	"fmt"

	"docquery-go/internal/config"
	"docquery-go/internal/model"
	"docquery-go/pkg/embedding"
	"docquery-go/pkg/es"
	"docquery-go/pkg/log"
)

const (
	defaultTopK             = 6
	defaultRecallMultiplier = 5
)

// VectorSearcher is the read side of the vector index consumed here.
type VectorSearcher interface {
	Search(ctx context.Context, req es.SearchRequest) ([]model.Candidate, error)
}

// AssetResolver resolves asset IDs linked to result chunks.
type AssetResolver interface {
	Resolve(ctx context.Context, assetIDs []string) []model.AssetRef
}

// Service answers queries with a ranked, filtered result set. It is
// read-only against the index and safe to call concurrently with ingestion
// writes.
type Service struct {
	embedder embedding.Client
	index    VectorSearcher
	assets   AssetResolver
	cfg      config.RetrievalConfig
}

// NewService creates a retrieval Service instance.
func NewService(embedder embedding.Client, index VectorSearcher, assets AssetResolver, cfg config.RetrievalConfig) *Service {
	return &Service{embedder: embedder, index: index, assets: assets, cfg: cfg}
}

// Retrieve runs the hybrid retrieval path: embed the query, recall
// candidates with filter pushdown, re-check the filter in memory, rerank,
// and resolve linked assets for the final top-k. When the query embedding
// fails the service degrades to lexical-overlap-only ranking over BM25
// recall instead of failing the query.
func (s *Service) Retrieve(ctx context.Context, query string, filter model.QueryFilter, topK int) ([]model.RetrievalResult, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	recallMult := s.cfg.RecallMultiplier
	if recallMult <= 0 {
		recallMult = defaultRecallMultiplier
	}

	wVec := s.cfg.VectorWeight
	wLex := s.cfg.LexicalWeight
	if wVec <= 0 && wLex <= 0 {
		wVec, wLex = DefaultVectorWeight, DefaultLexicalWeight
	}

	queryVector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("[SearchService] query embedding failed, degrading to lexical-only ranking: %v", err)
		queryVector = nil
		wVec, wLex = 0, 1
	}

	candidates, err := s.index.Search(ctx, es.SearchRequest{
		QueryText: query,
		Vector:    queryVector,
		Filter:    filter,
		K:         topK * recallMult,
	})
	if err != nil {
		return nil, fmt.Errorf("candidate recall failed: %w", err)
	}

	candidates = Apply(candidates, filter)

	// The query is cancellable up to this point; ranking below is pure
	// in-memory work.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	results := Rank(candidates, Tokenize(query), wVec, wLex, topK)

	assetIDsByChunk := make(map[string][]string, len(candidates))
	for _, c := range candidates {
		if len(c.Entry.AssetIDs) > 0 {
			assetIDsByChunk[c.Entry.ChunkID] = c.Entry.AssetIDs
		}
	}
	for i := range results {
		ids := assetIDsByChunk[results[i].ChunkID]
		if len(ids) > 0 {
			results[i].Assets = s.assets.Resolve(ctx, ids)
		}
	}

	log.Infof("[SearchService] query answered, candidates=%d, results=%d", len(candidates), len(results))
	return results, nil
}
