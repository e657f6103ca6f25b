// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// IngestTask represents one document ingestion job. The document payload has
// already been uploaded to object storage when the task is produced; per-
// document metadata travels with the task so the pipeline can denormalize it
// onto chunks.
type IngestTask struct {
	DocumentID   string   `json:"doc_id"`
	ObjectKey    string   `json:"object_key"`
	FileName     string   `json:"file_name"`
	SourcePath   string   `json:"source_path"`
	Industries   []string `json:"industries,omitempty"`
	CountryCodes []string `json:"country_codes,omitempty"`
	DateTS       int64    `json:"date_ts,omitempty"`
}
