package model

// VectorEntry is the document stored in the Elasticsearch index, one-to-one
// with a Chunk. Its existence is the index's source of truth for "this chunk
// is searchable". Metadata is denormalized for filter pushdown.
type VectorEntry struct {
	ChunkID      string    `json:"chunk_id"`
	DocumentID   string    `json:"doc_id"`
	Content      string    `json:"content"`
	PageStart    int       `json:"page_start"`
	PageEnd      int       `json:"page_end"`
	AssetIDs     []string  `json:"asset_ids,omitempty"`
	Industries   []string  `json:"industries,omitempty"`
	CountryCodes []string  `json:"country_codes,omitempty"`
	DateTS       int64     `json:"date_ts,omitempty"`
	Vector       []float32 `json:"vector,omitempty"`
	ModelVersion string    `json:"model_version,omitempty"`
}

// NewVectorEntry builds the index document for a chunk and its embedding.
func NewVectorEntry(chunk Chunk, vector []float32, modelVersion string) VectorEntry {
	return VectorEntry{
		ChunkID:      chunk.ID,
		DocumentID:   chunk.DocumentID,
		Content:      chunk.Content,
		PageStart:    chunk.PageStart,
		PageEnd:      chunk.PageEnd,
		AssetIDs:     chunk.AssetIDs,
		Industries:   chunk.Meta.Industries,
		CountryCodes: chunk.Meta.CountryCodes,
		DateTS:       chunk.Meta.DateTS,
		Vector:       vector,
		ModelVersion: modelVersion,
	}
}

// Meta reconstructs the denormalized document metadata of the entry.
func (e VectorEntry) Meta() DocumentMeta {
	return DocumentMeta{
		Industries:   e.Industries,
		CountryCodes: e.CountryCodes,
		DateTS:       e.DateTS,
	}
}

// Candidate is a vector entry paired with the raw similarity score the index
// returned for it.
type Candidate struct {
	Entry       VectorEntry `json:"entry"`
	VectorScore float64     `json:"vectorScore"`
}

// QueryFilter narrows a candidate set by structured constraints. Nil slices
// and zero bounds mean the constraint is absent. Set constraints match on
// intersection; the date range is inclusive on both ends.
type QueryFilter struct {
	Industries   []string `json:"industries,omitempty"`
	CountryCodes []string `json:"countryCodes,omitempty"`
	DateFrom     int64    `json:"dateFrom,omitempty"`
	DateTo       int64    `json:"dateTo,omitempty"`
}

// IsZero reports whether no constraint is present.
func (f QueryFilter) IsZero() bool {
	return len(f.Industries) == 0 && len(f.CountryCodes) == 0 && f.DateFrom == 0 && f.DateTo == 0
}

// RetrievalResult is one ranked entry of a query response.
type RetrievalResult struct {
	ChunkID      string     `json:"chunkId"`
	DocumentID   string     `json:"docId"`
	Content      string     `json:"content"`
	PageStart    int        `json:"pageStart"`
	PageEnd      int        `json:"pageEnd"`
	Score        float64    `json:"score"`
	VectorScore  float64    `json:"vectorScore"`
	LexicalScore float64    `json:"lexicalScore"`
	Assets       []AssetRef `json:"assets,omitempty"`
}
