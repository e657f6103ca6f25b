package repository

import (
	"errors"

	"gorm.io/gorm"

	"docquery-go/internal/model"
)

// AssetRepository persists asset metadata rows. The payload itself lives in
// object storage; registering the row is the publish step that makes an
// asset visible to readers.
type AssetRepository interface {
	Create(asset *model.Asset) error
	Exists(assetID string) (bool, error)
	FindByID(assetID string) (*model.Asset, error)
	FindBatch(assetIDs []string) ([]model.Asset, error)
	FindByDocument(docID string) ([]model.Asset, error)
	DeleteByDocument(docID string) error
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates an AssetRepository instance.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

// Create inserts the metadata row in a transaction of its own.
func (r *assetRepository) Create(asset *model.Asset) error {
	return r.db.Create(asset).Error
}

// Exists reports whether an asset row is already registered.
func (r *assetRepository) Exists(assetID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Asset{}).Where("asset_id = ?", assetID).Count(&count).Error
	return count > 0, err
}

// FindByID retrieves an asset row, mapping gorm's not-found onto the domain
// error so callers can flag missing assets.
func (r *assetRepository) FindByID(assetID string) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.Where("asset_id = ?", assetID).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindBatch retrieves asset rows for a slice of IDs.
func (r *assetRepository) FindBatch(assetIDs []string) ([]model.Asset, error) {
	var assets []model.Asset
	if len(assetIDs) == 0 {
		return assets, nil
	}
	err := r.db.Where("asset_id IN ?", assetIDs).Find(&assets).Error
	return assets, err
}

// FindByDocument retrieves all asset rows of a document.
func (r *assetRepository) FindByDocument(docID string) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.db.Where("doc_id = ?", docID).Find(&assets).Error
	return assets, err
}

// DeleteByDocument removes all asset rows of a document.
func (r *assetRepository) DeleteByDocument(docID string) error {
	return r.db.Where("doc_id = ?", docID).Delete(&model.Asset{}).Error
}
