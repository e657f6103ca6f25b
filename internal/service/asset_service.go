// Package service holds the business logic driving ingestion and asset
// resolution.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"docquery-go/internal/model"
	"docquery-go/internal/repository"
	"docquery-go/pkg/log"
	"docquery-go/pkg/storage"
)

const presignExpiry = 15 * time.Minute

// AssetService persists Table and Figure elements as content-addressed
// assets. Writes are idempotent: the asset ID is the content hash of payload
// and document ID, so re-ingesting unchanged input is a no-op. Publishing is
// atomic in the write order: the payload goes to object storage first and the
// metadata row second, so a reader never sees an asset without its payload.
type AssetService struct {
	assets  repository.AssetRepository
	objects storage.ObjectStore
}

// NewAssetService creates an AssetService instance.
func NewAssetService(assets repository.AssetRepository, objects storage.ObjectStore) *AssetService {
	return &AssetService{assets: assets, objects: objects}
}

// AssetID derives the content-addressed identifier of an asset.
func AssetID(docID string, payload []byte) string {
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte(docID))
	return hex.EncodeToString(h.Sum(nil))
}

// Put persists a Table or Figure element. If an asset with the derived ID is
// already registered the call is a no-op and returns the existing record.
func (s *AssetService) Put(ctx context.Context, docID string, el model.Element) (*model.Asset, error) {
	if !el.IsAsset() {
		return nil, fmt.Errorf("element kind %q is not an asset", el.Kind)
	}

	assetID := AssetID(docID, el.Payload)
	exists, err := s.assets.Exists(assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to check asset existence: %w", err)
	}
	if exists {
		return s.assets.FindByID(assetID)
	}

	objectKey := fmt.Sprintf("assets/%s/%s", docID, assetID)
	contentType := "application/octet-stream"
	if el.Kind == model.ElementTable {
		contentType = "text/plain"
	}
	if err := s.objects.Put(ctx, objectKey, el.Payload, contentType); err != nil {
		return nil, fmt.Errorf("failed to store asset payload: %w", err)
	}

	payloadSum := sha256.Sum256(el.Payload)
	asset := &model.Asset{
		ID:         assetID,
		DocumentID: docID,
		Page:       el.Page,
		Kind:       string(el.Kind),
		ObjectKey:  objectKey,
		Checksum:   hex.EncodeToString(payloadSum[:]),
	}
	if err := s.assets.Create(asset); err != nil {
		return nil, fmt.Errorf("failed to register asset metadata: %w", err)
	}
	return asset, nil
}

// Get retrieves an asset by ID, returning model.ErrAssetNotFound when the
// metadata row is absent.
func (s *AssetService) Get(ctx context.Context, assetID string) (*model.Asset, error) {
	return s.assets.FindByID(assetID)
}

// Resolve turns a set of asset IDs into references with presigned payload
// URLs. Missing assets are flagged, not fatal: the query result keeps the ID
// so the caller can surface the gap.
func (s *AssetService) Resolve(ctx context.Context, assetIDs []string) []model.AssetRef {
	if len(assetIDs) == 0 {
		return nil
	}

	found, err := s.assets.FindBatch(assetIDs)
	if err != nil {
		log.Errorf("[AssetService] batch asset lookup failed: %v", err)
		found = nil
	}
	byID := make(map[string]model.Asset, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	refs := make([]model.AssetRef, 0, len(assetIDs))
	for _, id := range assetIDs {
		a, ok := byID[id]
		if !ok {
			log.Warnf("[AssetService] asset %s referenced but not found", id)
			refs = append(refs, model.AssetRef{AssetID: id, Missing: true})
			continue
		}
		url, err := s.objects.PresignedURL(ctx, a.ObjectKey, presignExpiry)
		if err != nil {
			log.Warnf("[AssetService] failed to presign asset %s: %v", id, err)
		}
		refs = append(refs, model.AssetRef{
			AssetID: a.ID,
			Kind:    a.Kind,
			Page:    a.Page,
			URL:     url,
		})
	}
	return refs
}

// DeleteByDocument removes a document's asset payloads and metadata rows.
// Explicit document removal is the only path that deletes assets.
func (s *AssetService) DeleteByDocument(ctx context.Context, docID string) error {
	assets, err := s.assets.FindByDocument(docID)
	if err != nil {
		return fmt.Errorf("failed to list document assets: %w", err)
	}
	for _, a := range assets {
		if err := s.objects.Remove(ctx, a.ObjectKey); err != nil {
			log.Warnf("[AssetService] failed to remove payload of asset %s: %v", a.ID, err)
		}
	}
	return s.assets.DeleteByDocument(docID)
}
