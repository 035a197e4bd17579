package ports

import (
	"context"
	"io"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

// DocumentOrganizer is the inbound contract for classifying and placing uploads.
type DocumentOrganizer interface {
	Organize(ctx context.Context, userID string, files []domain.UploadedFile) ([]domain.UploadResult, error)
	Stage(ctx context.Context, userID string, files []domain.UploadedFile) ([]domain.OrganizeJob, error)
	Preview(ctx context.Context, file domain.UploadedFile) (domain.Decision, domain.Extraction)
}

// JobProcessor is the inbound contract for the asynchronous worker.
type JobProcessor interface {
	ProcessJob(ctx context.Context, job domain.OrganizeJob) (domain.UploadResult, error)
}

// DocumentLibrary is the inbound read/delete model over organized files.
type DocumentLibrary interface {
	ListByUser(ctx context.Context, principal domain.Principal, userID string) (map[domain.Category][]domain.UploadRecord, error)
	ListAll(ctx context.Context, principal domain.Principal) (map[domain.Category][]domain.UploadRecord, error)
	Stats(ctx context.Context, principal domain.Principal, userID string) (domain.UserStats, error)
	Download(ctx context.Context, principal domain.Principal, fileID int64) (*domain.UploadRecord, io.ReadCloser, error)
	DeleteFile(ctx context.Context, principal domain.Principal, fileID int64) error
	DeleteUser(ctx context.Context, principal domain.Principal, userID string) error
	ArchiveCategory(ctx context.Context, principal domain.Principal, userID string, category domain.Category, w io.Writer) error
}

// CategoryClassifier runs the classification cascade over extracted text.
type CategoryClassifier interface {
	Classify(ctx context.Context, text, filename string) domain.Decision
	FilenameIntent(filename string) (domain.Category, bool)
}
