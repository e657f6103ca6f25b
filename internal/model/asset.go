package model

import "time"

// Asset maps to the assets table. An asset is a persisted Table or Figure
// element. Its ID is the content hash of payload and document ID, which makes
// storage idempotent: re-ingesting an unchanged document produces the same
// asset IDs and therefore no new rows or objects.
type Asset struct {
	ID         string    `gorm:"type:varchar(64);primaryKey;column:asset_id" json:"assetId"`
	DocumentID string    `gorm:"type:varchar(36);not null;index;column:doc_id" json:"docId"`
	Page       int       `gorm:"not null;column:page" json:"page"`
	Kind       string    `gorm:"type:varchar(16);not null;column:kind" json:"kind"`
	ObjectKey  string    `gorm:"type:varchar(512);not null;column:object_key" json:"-"`
	Checksum   string    `gorm:"type:varchar(64);not null;column:checksum" json:"checksum"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName names the table for GORM.
func (Asset) TableName() string {
	return "assets"
}

// AssetRef is an asset reference resolved for a retrieval result. Missing is
// set when the referenced asset cannot be found; the result still carries the
// ID so the caller can surface the gap.
type AssetRef struct {
	AssetID string `json:"assetId"`
	Kind    string `json:"kind,omitempty"`
	Page    int    `json:"page,omitempty"`
	URL     string `json:"url,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}
