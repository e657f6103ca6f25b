// Package pipeline drives per-document ingestion: parse, normalize, persist
// assets, build chunks, index.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"docquery-go/internal/chunker"
	"docquery-go/internal/indexer"
	"docquery-go/internal/model"
	"docquery-go/internal/normalizer"
	"docquery-go/internal/repository"
	"docquery-go/internal/service"
	"docquery-go/pkg/log"
	"docquery-go/pkg/parser"
	"docquery-go/pkg/storage"
	"docquery-go/pkg/tasks"
)

// Processor wraps all the dependencies of document processing. Documents are
// independent of each other, so one Processor can serve concurrent workers;
// within a document the element-to-chunk merge is strictly sequential.
type Processor struct {
	parserClient *parser.Client
	objects      storage.ObjectStore
	docs         repository.DocumentRepository
	failures     repository.ChunkFailureRepository
	assetSvc     *service.AssetService
	builder      *chunker.Builder
	indexer      *indexer.Indexer
}

// NewProcessor creates a Processor instance.
func NewProcessor(
	parserClient *parser.Client,
	objects storage.ObjectStore,
	docs repository.DocumentRepository,
	failures repository.ChunkFailureRepository,
	assetSvc *service.AssetService,
	builder *chunker.Builder,
	ix *indexer.Indexer,
) *Processor {
	return &Processor{
		parserClient: parserClient,
		objects:      objects,
		docs:         docs,
		failures:     failures,
		assetSvc:     assetSvc,
		builder:      builder,
		indexer:      ix,
	}
}

// Process ingests one document end to end. Failures are isolated to the
// smallest unit they affect: a malformed element or a failing chunk never
// aborts its siblings, and the method returns an error only for faults that
// sink the whole document (missing payload, parser failure). All writes are
// idempotent, so redelivery of the same task is safe.
func (p *Processor) Process(ctx context.Context, task tasks.IngestTask) error {
	log.Infof("[Processor] processing document, docID: %s, file: %s", task.DocumentID, task.FileName)

	// 1. Fetch the document payload from object storage.
	obj, err := p.objects.Get(ctx, task.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document payload: %w", err)
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(obj)
	if err != nil {
		return fmt.Errorf("failed to read document payload: %w", err)
	}
	if size == 0 {
		log.Warnf("[Processor] document '%s' is empty, aborting", task.FileName)
		return errors.New("document payload is empty")
	}

	// 2. Parse into raw elements.
	rawElements, err := p.parseDocument(buf, task)
	if err != nil {
		return err
	}

	// 3. Register the document record (idempotent replace).
	meta := model.DocumentMeta{
		Industries:   task.Industries,
		CountryCodes: task.CountryCodes,
		DateTS:       task.DateTS,
	}
	doc := &model.Document{
		ID:         task.DocumentID,
		SourcePath: task.SourcePath,
		FileName:   task.FileName,
	}
	doc.SetMeta(meta)
	if err := p.docs.Upsert(doc); err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	// 4. Normalize into the typed element stream.
	elements, droppedErrs := normalizer.Normalize(rawElements)
	if len(droppedErrs) > 0 {
		log.Warnf("[Processor] dropped %d malformed element(s) for docID %s", len(droppedErrs), task.DocumentID)
	}
	log.Infof("[Processor] normalized %d element(s) for docID %s", len(elements), task.DocumentID)

	// 5. Persist Table/Figure elements as assets, keyed by element index for
	// the chunk builder to link. A failing asset loses its link, not the
	// document.
	assetIDs := make(map[int]string)
	assetCount := 0
	for _, el := range elements {
		if !el.IsAsset() {
			continue
		}
		asset, err := p.assetSvc.Put(ctx, task.DocumentID, el)
		if err != nil {
			log.Errorf("[Processor] failed to persist %s asset on page %d: %v", el.Kind, el.Page, err)
			continue
		}
		assetIDs[el.Index] = asset.ID
		assetCount++
	}

	// 6. Build chunks.
	chunks := p.builder.Build(task.DocumentID, meta, elements, assetIDs)
	if len(chunks) == 0 {
		log.Warnf("[Processor] no chunks produced for docID %s", task.DocumentID)
		return nil
	}
	log.Infof("[Processor] built %d chunk(s) for docID %s", len(chunks), task.DocumentID)

	// 7. Supersede entries of chunks that no longer exist, then index the
	// current set. Content-derived IDs make both steps no-ops for unchanged
	// input.
	chunkIDs := make([]string, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.ID
	}
	if err := p.indexer.DeleteStale(ctx, task.DocumentID, chunkIDs); err != nil {
		log.Errorf("[Processor] failed to delete stale entries for docID %s: %v", task.DocumentID, err)
	}

	indexed, failed := 0, 0
	for _, chunk := range chunks {
		if _, err := p.indexer.Index(ctx, chunk); err != nil {
			failed++
			log.Errorf("[Processor] chunk %s failed: %v", chunk.ID, err)
			continue
		}
		indexed++
	}

	log.Infof("[Processor] document done, docID: %s, chunks indexed: %d, failed: %d, assets: %d",
		task.DocumentID, indexed, failed, assetCount)
	return nil
}

func (p *Processor) parseDocument(payload *bytes.Buffer, task tasks.IngestTask) ([]parser.RawElement, error) {
	rawElements, err := p.parserClient.Parse(bytes.NewReader(payload.Bytes()), task.FileName)
	if err != nil {
		// A parse failure sinks the document; record it for inspection.
		rec := &model.ChunkFailure{
			DocumentID: task.DocumentID,
			Stage:      "parse",
			Reason:     err.Error(),
			Attempts:   1,
		}
		if rerr := p.failures.Record(rec); rerr != nil {
			log.Errorf("[Processor] failed to record parse failure for docID %s: %v", task.DocumentID, rerr)
		}
		return nil, fmt.Errorf("parser failed for document %s: %w", task.DocumentID, err)
	}
	if len(rawElements) == 0 {
		return nil, errors.New("parser produced no elements")
	}
	return rawElements, nil
}
