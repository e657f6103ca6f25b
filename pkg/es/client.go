// Package es provides the Elasticsearch-backed vector index.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"docquery-go/internal/config"
	"docquery-go/internal/model"
	"docquery-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES initializes the Elasticsearch client and bootstraps the index.
func InitES(esCfg config.ElasticsearchConfig, dims int) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, dims)
}

// createIndexIfNotExists creates the chunk index with its mapping when absent.
func createIndexIfNotExists(indexName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("error checking index existence: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("index '%s' already exists", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("unexpected status code while checking index '%s': %d", indexName, res.StatusCode)
		return fmt.Errorf("unexpected status code while checking index existence: %d", res.StatusCode)
	}

	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"chunk_id": { "type": "keyword" },
				"doc_id": { "type": "keyword" },
				"content": { "type": "text" },
				"page_start": { "type": "integer" },
				"page_end": { "type": "integer" },
				"asset_ids": { "type": "keyword" },
				"industries": { "type": "keyword" },
				"country_codes": { "type": "keyword" },
				"date_ts": { "type": "long" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, dims)

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)

	if err != nil {
		log.Errorf("failed to create index '%s': %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("elasticsearch returned an error creating index '%s': %s", indexName, res.String())
		return errors.New("elasticsearch returned an error creating the index")
	}

	log.Infof("index '%s' created successfully", indexName)
	return nil
}

// SearchRequest describes a candidate recall against the index. A nil Vector
// requests lexical-only recall; present filter constraints are pushed down.
type SearchRequest struct {
	QueryText string
	Vector    []float32
	Filter    model.QueryFilter
	K         int
}

// Store exposes the index operations the ingestion and retrieval paths need.
// Writes are atomic per chunk ID; reads never observe a partial entry.
type Store struct {
	indexName string
}

// NewStore returns a Store bound to the configured index. InitES must have
// been called first.
func NewStore(cfg config.ElasticsearchConfig) *Store {
	return &Store{indexName: cfg.IndexName}
}

// Upsert writes a vector entry keyed by chunk ID, replacing any existing one.
func (s *Store) Upsert(ctx context.Context, entry model.VectorEntry) error {
	docBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.indexName,
		DocumentID: entry.ChunkID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("error indexing entry into Elasticsearch: %s", res.String())
		return errors.New("failed to index vector entry")
	}

	return nil
}

// DeleteByDocument removes every entry belonging to a document.
func (s *Store) DeleteByDocument(ctx context.Context, docID string) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"doc_id": docID},
		},
	}
	return s.deleteByQuery(ctx, query)
}

// DeleteStale removes a document's entries whose chunk IDs are not in keep.
// Content-derived IDs make this the supersede step of re-ingestion: unchanged
// chunks stay untouched and visible throughout.
func (s *Store) DeleteStale(ctx context.Context, docID string, keep []string) error {
	boolQuery := map[string]interface{}{
		"filter": []map[string]interface{}{
			{"term": map[string]interface{}{"doc_id": docID}},
		},
	}
	if len(keep) > 0 {
		boolQuery["must_not"] = []map[string]interface{}{
			{"terms": map[string]interface{}{"chunk_id": keep}},
		}
	}
	query := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
	return s.deleteByQuery(ctx, query)
}

func (s *Store) deleteByQuery(ctx context.Context, query map[string]interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return fmt.Errorf("failed to encode delete query: %w", err)
	}

	res, err := ESClient.DeleteByQuery(
		[]string{s.indexName},
		&buf,
		ESClient.DeleteByQuery.WithContext(ctx),
		ESClient.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("delete_by_query returned an error: %s", res.String())
		return errors.New("failed to delete vector entries")
	}
	return nil
}

// Search recalls up to K candidates. With a vector present it runs a knn
// query with filter pushdown; without one it degrades to a BM25 match so the
// reranker can still order candidates by lexical overlap alone.
func (s *Store) Search(ctx context.Context, req SearchRequest) ([]model.Candidate, error) {
	filters := buildFilterClauses(req.Filter)

	var esQuery map[string]interface{}
	if len(req.Vector) > 0 {
		knn := map[string]interface{}{
			"field":          "vector",
			"query_vector":   req.Vector,
			"k":              req.K,
			"num_candidates": req.K * 10,
		}
		if len(filters) > 0 {
			knn["filter"] = map[string]interface{}{
				"bool": map[string]interface{}{"filter": filters},
			}
		}
		esQuery = map[string]interface{}{
			"knn":  knn,
			"size": req.K,
		}
	} else {
		boolQuery := map[string]interface{}{
			"must": map[string]interface{}{
				"match": map[string]interface{}{"content": req.QueryText},
			},
		}
		if len(filters) > 0 {
			boolQuery["filter"] = filters
		}
		esQuery = map[string]interface{}{
			"query": map[string]interface{}{"bool": boolQuery},
			"size":  req.K,
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(s.indexName),
		ESClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.VectorEntry `json:"_source"`
				Score  float64           `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		score := hit.Score
		if len(req.Vector) == 0 {
			// BM25 score is not a vector similarity; the reranker runs
			// lexical-only in this mode.
			score = 0
		}
		candidates = append(candidates, model.Candidate{Entry: hit.Source, VectorScore: score})
	}
	return candidates, nil
}

// buildFilterClauses translates a QueryFilter into ES filter clauses.
func buildFilterClauses(f model.QueryFilter) []map[string]interface{} {
	var filters []map[string]interface{}
	if len(f.Industries) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"industries": f.Industries},
		})
	}
	if len(f.CountryCodes) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"country_codes": f.CountryCodes},
		})
	}
	if f.DateFrom != 0 || f.DateTo != 0 {
		rangeClause := map[string]interface{}{}
		if f.DateFrom != 0 {
			rangeClause["gte"] = f.DateFrom
		}
		if f.DateTo != 0 {
			rangeClause["lte"] = f.DateTo
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"date_ts": rangeClause},
		})
	}
	return filters
}
