package model

import (
	"encoding/json"
	"time"
)

// DocumentMeta is the optional structured metadata supplied per document by
// the ingestion entry point. It is denormalized onto every chunk of the
// document for filter pushdown.
type DocumentMeta struct {
	Industries   []string `json:"industries"`
	CountryCodes []string `json:"countryCodes"`
	DateTS       int64    `json:"dateTs"`
}

// Document maps to the documents table. A document is immutable once
// ingested; re-ingestion under the same ID replaces derived data instead of
// duplicating it.
type Document struct {
	ID         string    `gorm:"type:varchar(36);primaryKey;column:doc_id" json:"docId"`
	SourcePath string    `gorm:"type:varchar(512);not null;column:source_path" json:"sourcePath"`
	FileName   string    `gorm:"type:varchar(255);not null;column:file_name" json:"fileName"`
	MetaJSON   string    `gorm:"type:text;column:metadata_json" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName names the table for GORM.
func (Document) TableName() string {
	return "documents"
}

// Meta decodes the stored metadata JSON. A missing or malformed blob yields
// the zero value, which every filter treats as "no constraint satisfied".
func (d Document) Meta() DocumentMeta {
	var m DocumentMeta
	if d.MetaJSON != "" {
		_ = json.Unmarshal([]byte(d.MetaJSON), &m)
	}
	return m
}

// SetMeta encodes the metadata for storage.
func (d *Document) SetMeta(m DocumentMeta) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	d.MetaJSON = string(raw)
}
