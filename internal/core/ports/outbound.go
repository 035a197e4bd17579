package ports

import (
	"context"
	"io"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

// UploadRepository persists upload records.
type UploadRepository interface {
	Create(ctx context.Context, rec *domain.UploadRecord) error
	GetByID(ctx context.Context, id int64) (*domain.UploadRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.UploadRecord, error)
	ListAll(ctx context.Context) ([]domain.UploadRecord, error)
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// FileStore places file bytes under user_<id>/<category>/<name>.
type FileStore interface {
	// Place writes body into the category folder, resolving name collisions,
	// and returns the stored name.
	Place(ctx context.Context, userID string, category domain.Category, filename string, body io.Reader) (string, error)
	Open(ctx context.Context, userID string, category domain.Category, filename string) (io.ReadCloser, error)
	Delete(ctx context.Context, userID string, category domain.Category, filename string) error
	List(ctx context.Context, userID string, category domain.Category) ([]string, error)
	DeleteUser(ctx context.Context, userID string) error

	Stage(ctx context.Context, userID, filename string, body io.Reader) (string, error)
	OpenStaged(ctx context.Context, userID, key string) (io.ReadCloser, error)
	RemoveStaged(ctx context.Context, userID, key string) error
}

// JobQueue publishes and consumes organize jobs.
type JobQueue interface {
	PublishOrganizeJob(ctx context.Context, job domain.OrganizeJob) error
	SubscribeOrganizeJobs(ctx context.Context, handler func(context.Context, domain.OrganizeJob) error) error
}

// TextExtractor turns an uploaded file into best-effort text. It never fails.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.UploadedFile) domain.Extraction
}

// TextRecognizer is an optical character recognition engine.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// PageRasterizer renders PDF pages to images for OCR.
type PageRasterizer interface {
	RasterizePDF(ctx context.Context, pdf []byte) ([][]byte, error)
}

// Transcriber is a speech-to-text engine.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, media []byte) (string, error)
}

// CategoryGenerator asks a generative model to pick one category name.
type CategoryGenerator interface {
	GenerateCategory(ctx context.Context, prompt string) (string, error)
}

// PipelineObserver receives per-file pipeline outcomes.
type PipelineObserver interface {
	ObserveExtraction(method string, failure domain.ExtractionFailure)
	ObserveDecision(decision domain.Decision)
}
