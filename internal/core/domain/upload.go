package domain

import "time"

// UploadRecord is the persisted trace of an organized file.
type UploadRecord struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	Category    Category  `json:"category"`
	ProcessedAt time.Time `json:"processed_at"`
}

// UploadResult is the per-file outcome of an organize batch.
type UploadResult struct {
	Filename   string     `json:"filename"`
	StoredName string     `json:"stored_name,omitempty"`
	Category   Category   `json:"category,omitempty"`
	Stage      Stage      `json:"stage,omitempty"`
	Extraction Extraction `json:"extraction"`
	RecordID   int64      `json:"record_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func (r UploadResult) Failed() bool {
	return r.Error != ""
}

// OrganizeJob is a staged upload waiting for the worker.
type OrganizeJob struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Filename   string    `json:"filename"`
	StagedKey  string    `json:"staged_key"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type UserStats struct {
	UserID            string   `json:"user_id"`
	TotalFiles        int      `json:"total_files"`
	TotalCategories   int      `json:"total_categories"`
	MostFilesCategory Category `json:"most_files_category,omitempty"`
}

// Principal is the caller identity supplied by the upstream auth layer.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// CanAccess reports whether the principal may read files owned by userID.
func (p Principal) CanAccess(userID string) bool {
	return p.IsAdmin || (p.UserID != "" && p.UserID == userID)
}

// GroupByCategory buckets records by category, keeping their relative order.
func GroupByCategory(records []UploadRecord) map[Category][]UploadRecord {
	out := make(map[Category][]UploadRecord)
	for _, rec := range records {
		out[rec.Category] = append(out[rec.Category], rec)
	}
	return out
}
