package service

import (
	"context"
	"fmt"
	"io"

	"docquery-go/internal/model"
	"docquery-go/internal/repository"
	"docquery-go/pkg/log"
	"docquery-go/pkg/storage"
	"docquery-go/pkg/tasks"

	"github.com/google/uuid"
)

// VectorRemover is the slice of the vector index needed for document
// removal.
type VectorRemover interface {
	DeleteByDocument(ctx context.Context, docID string) error
}

// DocumentService accepts documents for ingestion and removes them. The
// heavy pipeline work happens asynchronously in the Kafka consumer; this
// service only stages the payload and publishes the task.
type DocumentService struct {
	docs     repository.DocumentRepository
	failures repository.ChunkFailureRepository
	assetSvc *AssetService
	index    VectorRemover
	objects  storage.ObjectStore
	produce  func(task tasks.IngestTask) error
}

// NewDocumentService creates a DocumentService instance.
func NewDocumentService(
	docs repository.DocumentRepository,
	failures repository.ChunkFailureRepository,
	assetSvc *AssetService,
	index VectorRemover,
	objects storage.ObjectStore,
	produce func(task tasks.IngestTask) error,
) *DocumentService {
	return &DocumentService{
		docs:     docs,
		failures: failures,
		assetSvc: assetSvc,
		index:    index,
		objects:  objects,
		produce:  produce,
	}
}

// DocumentID derives a stable identifier from the source path, so repeated
// ingestion of the same source resolves to the same document.
func DocumentID(sourcePath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourcePath)).String()
}

// Ingest stages a document payload in object storage and queues its
// ingestion task. It returns the document ID immediately; indexing happens
// in the background pipeline.
func (s *DocumentService) Ingest(ctx context.Context, payload io.Reader, fileName, sourcePath string, meta model.DocumentMeta) (string, error) {
	docID := DocumentID(sourcePath)

	data, err := io.ReadAll(payload)
	if err != nil {
		return "", fmt.Errorf("failed to read document payload: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("document payload is empty")
	}

	objectKey := fmt.Sprintf("documents/%s/%s", docID, fileName)
	if err := s.objects.Put(ctx, objectKey, data, "application/octet-stream"); err != nil {
		return "", fmt.Errorf("failed to stage document payload: %w", err)
	}

	task := tasks.IngestTask{
		DocumentID:   docID,
		ObjectKey:    objectKey,
		FileName:     fileName,
		SourcePath:   sourcePath,
		Industries:   meta.Industries,
		CountryCodes: meta.CountryCodes,
		DateTS:       meta.DateTS,
	}
	if err := s.produce(task); err != nil {
		return "", fmt.Errorf("failed to queue ingest task: %w", err)
	}

	log.Infof("[DocumentService] queued ingestion, docID: %s, file: %s", docID, fileName)
	return docID, nil
}

// List returns all registered documents.
func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	return s.docs.FindAll()
}

// Delete removes a document and all its derived data: vector entries,
// assets, failure records, and the registry row. This is the only path that
// deletes assets.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	if err := s.index.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete vector entries: %w", err)
	}
	if err := s.assetSvc.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete assets: %w", err)
	}
	if err := s.failures.DeleteByDocument(docID); err != nil {
		log.Warnf("[DocumentService] failed to clear failure records for docID %s: %v", docID, err)
	}
	if err := s.docs.Delete(docID); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}
	log.Infof("[DocumentService] document removed, docID: %s", docID)
	return nil
}
