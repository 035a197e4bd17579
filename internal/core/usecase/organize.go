package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
)

type OrganizeDocumentsUseCase struct {
	extractor   ports.TextExtractor
	classifier  ports.CategoryClassifier
	store       ports.FileStore
	repo        ports.UploadRepository
	queue       ports.JobQueue
	observer    ports.PipelineObserver
	concurrency int
	now         func() time.Time
}

type OrganizeOptions struct {
	// Queue enables Stage. Nil keeps the use case synchronous only.
	Queue       ports.JobQueue
	Observer    ports.PipelineObserver
	Concurrency int
}

func NewOrganizeDocumentsUseCase(
	extractor ports.TextExtractor,
	classifier ports.CategoryClassifier,
	store ports.FileStore,
	repo ports.UploadRepository,
	options OrganizeOptions,
) *OrganizeDocumentsUseCase {
	concurrency := options.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	observer := options.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	return &OrganizeDocumentsUseCase{
		extractor:   extractor,
		classifier:  classifier,
		store:       store,
		repo:        repo,
		queue:       options.Queue,
		observer:    observer,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Organize classifies, places and records every file of the batch. A failing
// file is reported on its own result and never aborts the others.
func (uc *OrganizeDocumentsUseCase) Organize(ctx context.Context, userID string, files []domain.UploadedFile) ([]domain.UploadResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "organize", errors.New("user id is required"))
	}

	results := make([]domain.UploadResult, len(files))
	var g errgroup.Group
	g.SetLimit(uc.concurrency)
	for i, file := range files {
		g.Go(func() error {
			results[i] = uc.organizeOne(ctx, userID, file)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// Preview runs extraction and classification without storing anything.
func (uc *OrganizeDocumentsUseCase) Preview(ctx context.Context, file domain.UploadedFile) (domain.Decision, domain.Extraction) {
	if name := sanitizeFilename(file.Filename); name != "" {
		file.Filename = name
	}
	return uc.decide(ctx, file)
}

// Stage parks the raw bytes in the user's temp area and publishes one
// organize job per file. Jobs published before a failure are returned with
// the error.
func (uc *OrganizeDocumentsUseCase) Stage(ctx context.Context, userID string, files []domain.UploadedFile) ([]domain.OrganizeJob, error) {
	if uc.queue == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "stage uploads", errors.New("async organize is disabled"))
	}
	if strings.TrimSpace(userID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "stage uploads", errors.New("user id is required"))
	}

	jobs := make([]domain.OrganizeJob, 0, len(files))
	for _, file := range files {
		name := sanitizeFilename(file.Filename)
		if name == "" {
			slog.Warn("upload_skipped", "user_id", userID, "reason", "empty filename")
			continue
		}

		key, err := uc.store.Stage(ctx, userID, name, bytes.NewReader(file.Content))
		if err != nil {
			return jobs, fmt.Errorf("stage %q: %w", name, err)
		}

		job := domain.OrganizeJob{
			ID:         uuid.NewString(),
			UserID:     userID,
			Filename:   name,
			StagedKey:  key,
			EnqueuedAt: uc.now(),
		}
		if err := uc.queue.PublishOrganizeJob(ctx, job); err != nil {
			if rmErr := uc.store.RemoveStaged(ctx, userID, key); rmErr != nil {
				slog.Warn("staged_cleanup_failed", "user_id", userID, "staged_key", key, "error", rmErr)
			}
			return jobs, fmt.Errorf("publish organize job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// ProcessJob runs a staged upload through the pipeline. The staged bytes are
// kept when placement or persistence fails.
func (uc *OrganizeDocumentsUseCase) ProcessJob(ctx context.Context, job domain.OrganizeJob) (domain.UploadResult, error) {
	rc, err := uc.store.OpenStaged(ctx, job.UserID, job.StagedKey)
	if err != nil {
		return domain.UploadResult{Filename: job.Filename, Error: err.Error()}, fmt.Errorf("open staged upload: %w", err)
	}
	content, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return domain.UploadResult{Filename: job.Filename, Error: err.Error()}, fmt.Errorf("read staged upload: %w", err)
	}

	result := uc.organizeOne(ctx, job.UserID, domain.UploadedFile{Filename: job.Filename, Content: content})
	if result.Failed() {
		return result, fmt.Errorf("organize job %s: %s", job.ID, result.Error)
	}

	if err := uc.store.RemoveStaged(ctx, job.UserID, job.StagedKey); err != nil {
		slog.Warn("staged_cleanup_failed", "job_id", job.ID, "staged_key", job.StagedKey, "error", err)
	}
	return result, nil
}

func (uc *OrganizeDocumentsUseCase) organizeOne(ctx context.Context, userID string, file domain.UploadedFile) domain.UploadResult {
	name := sanitizeFilename(file.Filename)
	if name == "" {
		return domain.UploadResult{Filename: file.Filename, Error: "empty filename"}
	}
	file.Filename = name
	result := domain.UploadResult{Filename: name}

	decision, extraction := uc.decide(ctx, file)
	result.Category = decision.Category
	result.Stage = decision.Stage
	result.Extraction = extraction

	stored, err := uc.store.Place(ctx, userID, decision.Category, name, bytes.NewReader(file.Content))
	if err != nil {
		result.Error = fmt.Sprintf("store file: %v", err)
		slog.Error("file_store_failed", "user_id", userID, "filename", name, "error", err)
		return result
	}
	result.StoredName = stored

	rec := &domain.UploadRecord{
		UserID:      userID,
		Filename:    stored,
		Category:    decision.Category,
		ProcessedAt: uc.now(),
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		result.Error = fmt.Sprintf("record upload: %v", err)
		slog.Error("upload_record_failed", "user_id", userID, "filename", stored, "error", err)
		if rmErr := uc.store.Delete(ctx, userID, decision.Category, stored); rmErr != nil {
			slog.Warn("orphan_file_cleanup_failed", "user_id", userID, "filename", stored, "error", rmErr)
		}
		return result
	}
	result.RecordID = rec.ID

	slog.Info("file_organized",
		"user_id", userID,
		"filename", stored,
		"category", string(decision.Category),
		"stage", string(decision.Stage),
		"method", extraction.Method,
	)
	return result
}

// decide skips extraction when the filename alone settles the category.
func (uc *OrganizeDocumentsUseCase) decide(ctx context.Context, file domain.UploadedFile) (domain.Decision, domain.Extraction) {
	if category, ok := uc.classifier.FilenameIntent(file.Filename); ok {
		decision := domain.Decision{Category: category, Stage: domain.StageFilenameIntent}
		uc.observer.ObserveDecision(decision)
		return decision, domain.Extraction{Method: domain.MethodNone}
	}

	extraction := uc.extractor.Extract(ctx, file)
	uc.observer.ObserveExtraction(extraction.Method, extraction.Failure)
	if extraction.Failure != domain.ExtractionOK && extraction.Failure != domain.ExtractionUnsupported {
		slog.Warn("extraction_degraded",
			"filename", file.Filename,
			"method", extraction.Method,
			"failure", string(extraction.Failure),
			"error", extraction.Err,
		)
	}

	decision := uc.classifier.Classify(ctx, extraction.Text, file.Filename)
	uc.observer.ObserveDecision(decision)
	return decision, extraction
}

// sanitizeFilename keeps the base name, folds accented letters to ASCII,
// turns whitespace runs into "_" and drops everything outside
// [A-Za-z0-9._-]. An empty result means the name is unusable.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	base = foldToASCII(base)
	base = strings.Join(strings.Fields(base), "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, base)
	return strings.Trim(base, "._")
}

// foldToASCII decomposes with NFKD and strips combining marks, so "é"
// becomes "e" instead of being dropped.
func foldToASCII(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		return s
	}
	return folded
}

type noopObserver struct{}

func (noopObserver) ObserveExtraction(string, domain.ExtractionFailure) {}
func (noopObserver) ObserveDecision(domain.Decision)                    {}
