package model

// Chunk is a retrieval unit: a contiguous span of a single document's text
// elements plus links to the assets falling inside that span. Chunks are
// immutable; re-ingestion supersedes them by producing the same IDs for
// unchanged content.
type Chunk struct {
	ID         string       `json:"chunkId"`
	DocumentID string       `json:"docId"`
	Content    string       `json:"content"`
	PageStart  int          `json:"pageStart"`
	PageEnd    int          `json:"pageEnd"`
	AssetIDs   []string     `json:"assetIds,omitempty"`
	Meta       DocumentMeta `json:"meta"`
}
