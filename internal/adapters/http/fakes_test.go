package httpadapter

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/config"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type organizerFake struct {
	gotUserID string
	gotFiles  []domain.UploadedFile
	stageErr  error
	jobs      []domain.OrganizeJob
}

func (f *organizerFake) Organize(_ context.Context, userID string, files []domain.UploadedFile) ([]domain.UploadResult, error) {
	f.gotUserID = userID
	f.gotFiles = files
	out := make([]domain.UploadResult, 0, len(files))
	for _, file := range files {
		out = append(out, domain.UploadResult{
			Filename:   file.Filename,
			StoredName: file.Filename,
			Category:   domain.CategoryOthers,
			Stage:      domain.StageExtensionNoText,
		})
	}
	return out, nil
}

func (f *organizerFake) Stage(_ context.Context, userID string, files []domain.UploadedFile) ([]domain.OrganizeJob, error) {
	f.gotUserID = userID
	f.gotFiles = files
	if f.jobs != nil || f.stageErr != nil {
		return f.jobs, f.stageErr
	}
	jobs := make([]domain.OrganizeJob, 0, len(files))
	for i, file := range files {
		jobs = append(jobs, domain.OrganizeJob{
			ID:         "job-" + string(rune('a'+i)),
			UserID:     userID,
			Filename:   file.Filename,
			StagedKey:  "k_" + file.Filename,
			EnqueuedAt: time.Unix(0, 0).UTC(),
		})
	}
	return jobs, nil
}

func (f *organizerFake) Preview(_ context.Context, file domain.UploadedFile) (domain.Decision, domain.Extraction) {
	f.gotFiles = []domain.UploadedFile{file}
	return domain.Decision{Category: domain.CategoryAcademic, Stage: domain.StageKeywordScore},
		domain.Extraction{Method: domain.MethodPlainText}
}

type libraryFake struct {
	err       error
	principal domain.Principal
	deletedID int64
	record    *domain.UploadRecord
	content   string
}

func (f *libraryFake) ListByUser(_ context.Context, p domain.Principal, userID string) (map[domain.Category][]domain.UploadRecord, error) {
	f.principal = p
	if f.err != nil {
		return nil, f.err
	}
	return map[domain.Category][]domain.UploadRecord{
		domain.CategoryWork: {{ID: 1, UserID: userID, Filename: "cv.pdf", Category: domain.CategoryWork}},
	}, nil
}

func (f *libraryFake) ListAll(_ context.Context, p domain.Principal) (map[domain.Category][]domain.UploadRecord, error) {
	f.principal = p
	return map[domain.Category][]domain.UploadRecord{}, f.err
}

func (f *libraryFake) Stats(_ context.Context, p domain.Principal, userID string) (domain.UserStats, error) {
	f.principal = p
	return domain.UserStats{UserID: userID, TotalFiles: 3, TotalCategories: 2, MostFilesCategory: domain.CategoryWork}, f.err
}

func (f *libraryFake) Download(_ context.Context, p domain.Principal, fileID int64) (*domain.UploadRecord, io.ReadCloser, error) {
	f.principal = p
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.record, io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *libraryFake) DeleteFile(_ context.Context, p domain.Principal, fileID int64) error {
	f.principal = p
	f.deletedID = fileID
	return f.err
}

func (f *libraryFake) DeleteUser(_ context.Context, p domain.Principal, _ string) error {
	f.principal = p
	return f.err
}

func (f *libraryFake) ArchiveCategory(_ context.Context, p domain.Principal, _ string, _ domain.Category, w io.Writer) error {
	f.principal = p
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "PK-fake")
	return err
}

func newTestHandler(cfg config.Config, organizer *organizerFake, library *libraryFake) http.Handler {
	if organizer == nil {
		organizer = &organizerFake{}
	}
	if library == nil {
		library = &libraryFake{}
	}
	return NewRouter(cfg, organizer, library, domain.DefaultCatalog(), nil).Handler()
}
