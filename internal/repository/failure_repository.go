package repository

import (
	"gorm.io/gorm"

	"docquery-go/internal/model"
)

// ChunkFailureRepository records chunks that exhausted their retry budget so
// a later ingestion run can pick them up.
type ChunkFailureRepository interface {
	Record(failure *model.ChunkFailure) error
	FindByDocument(docID string) ([]model.ChunkFailure, error)
	DeleteByChunk(chunkID string) error
	DeleteByDocument(docID string) error
}

type chunkFailureRepository struct {
	db *gorm.DB
}

// NewChunkFailureRepository creates a ChunkFailureRepository instance.
func NewChunkFailureRepository(db *gorm.DB) ChunkFailureRepository {
	return &chunkFailureRepository{db: db}
}

// Record stores a terminal failure entry.
func (r *chunkFailureRepository) Record(failure *model.ChunkFailure) error {
	return r.db.Create(failure).Error
}

// FindByDocument lists a document's recorded failures.
func (r *chunkFailureRepository) FindByDocument(docID string) ([]model.ChunkFailure, error) {
	var failures []model.ChunkFailure
	err := r.db.Where("doc_id = ?", docID).Find(&failures).Error
	return failures, err
}

// DeleteByChunk clears failure records once the chunk indexes successfully.
func (r *chunkFailureRepository) DeleteByChunk(chunkID string) error {
	return r.db.Where("chunk_id = ?", chunkID).Delete(&model.ChunkFailure{}).Error
}

// DeleteByDocument clears all failure records of a document.
func (r *chunkFailureRepository) DeleteByDocument(docID string) error {
	return r.db.Where("doc_id = ?", docID).Delete(&model.ChunkFailure{}).Error
}
