package model

import (
	"errors"
	"fmt"
)

// ErrAssetNotFound is returned when an asset ID resolves to nothing. Callers
// on the query path omit the asset and flag it instead of failing the query.
var ErrAssetNotFound = errors.New("asset not found")

// MalformedElementError marks a parser element that lacks required position
// metadata. Such elements are dropped with a warning; the document itself
// keeps processing.
type MalformedElementError struct {
	Index  int
	Reason string
}

func (e *MalformedElementError) Error() string {
	return fmt.Sprintf("malformed element %d: %s", e.Index, e.Reason)
}

// EmbeddingFailure marks a chunk whose embedding could not be computed after
// retries. The chunk is excluded from the index until a later run succeeds;
// sibling chunks are unaffected.
type EmbeddingFailure struct {
	ChunkID string
	Err     error
}

func (e *EmbeddingFailure) Error() string {
	return fmt.Sprintf("embedding failed for chunk %s: %v", e.ChunkID, e.Err)
}

func (e *EmbeddingFailure) Unwrap() error {
	return e.Err
}

// IndexWriteFailure marks a chunk whose vector entry could not be written
// after retries. Like EmbeddingFailure it never aborts sibling chunks.
type IndexWriteFailure struct {
	ChunkID string
	Err     error
}

func (e *IndexWriteFailure) Error() string {
	return fmt.Sprintf("index write failed for chunk %s: %v", e.ChunkID, e.Err)
}

func (e *IndexWriteFailure) Unwrap() error {
	return e.Err
}
