package model

import "time"

// ChunkFailure maps to the chunk_failures table. A row records a chunk that
// exhausted its retry budget during embedding or index write; it stays until
// a later ingestion run of the same document succeeds.
type ChunkFailure struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ChunkID    string    `gorm:"type:varchar(64);not null;index;column:chunk_id" json:"chunkId"`
	DocumentID string    `gorm:"type:varchar(36);not null;index;column:doc_id" json:"docId"`
	Stage      string    `gorm:"type:varchar(32);not null;column:stage" json:"stage"`
	Reason     string    `gorm:"type:text;column:reason" json:"reason"`
	Attempts   int       `gorm:"not null;column:attempts" json:"attempts"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName names the table for GORM.
func (ChunkFailure) TableName() string {
	return "chunk_failures"
}
