// Package repository defines the interfaces and implementations for the
// metadata registry backing ingestion.
package repository

import (
	"gorm.io/gorm"

	"docquery-go/internal/model"
)

// DocumentRepository persists document records.
type DocumentRepository interface {
	Upsert(doc *model.Document) error
	FindByID(docID string) (*model.Document, error)
	FindAll() ([]model.Document, error)
	Delete(docID string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a DocumentRepository instance.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Upsert inserts or replaces the record for a document ID. Re-ingestion of
// the same ID must not duplicate the row.
func (r *documentRepository) Upsert(doc *model.Document) error {
	return r.db.Save(doc).Error
}

// FindByID retrieves a document record by ID.
func (r *documentRepository) FindByID(docID string) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("doc_id = ?", docID).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindAll lists all document records.
func (r *documentRepository) FindAll() ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Find(&docs).Error
	return docs, err
}

// Delete removes a document record.
func (r *documentRepository) Delete(docID string) error {
	return r.db.Where("doc_id = ?", docID).Delete(&model.Document{}).Error
}
