package usecase

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
)

type LibraryUseCase struct {
	repo  ports.UploadRepository
	store ports.FileStore
	now   func() time.Time
}

func NewLibraryUseCase(repo ports.UploadRepository, store ports.FileStore) *LibraryUseCase {
	return &LibraryUseCase{
		repo:  repo,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (uc *LibraryUseCase) ListByUser(ctx context.Context, principal domain.Principal, userID string) (map[domain.Category][]domain.UploadRecord, error) {
	if err := authorizeOwner(principal, userID, "list uploads"); err != nil {
		return nil, err
	}
	records, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list uploads by user: %w", err)
	}
	return domain.GroupByCategory(records), nil
}

func (uc *LibraryUseCase) ListAll(ctx context.Context, principal domain.Principal) (map[domain.Category][]domain.UploadRecord, error) {
	if err := authorizeAdmin(principal, "list all uploads"); err != nil {
		return nil, err
	}
	records, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all uploads: %w", err)
	}
	return domain.GroupByCategory(records), nil
}

func (uc *LibraryUseCase) Stats(ctx context.Context, principal domain.Principal, userID string) (domain.UserStats, error) {
	if err := authorizeOwner(principal, userID, "user stats"); err != nil {
		return domain.UserStats{}, err
	}
	records, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("list uploads by user: %w", err)
	}
	return computeStats(userID, records), nil
}

func (uc *LibraryUseCase) Download(ctx context.Context, principal domain.Principal, fileID int64) (*domain.UploadRecord, io.ReadCloser, error) {
	rec, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch upload: %w", err)
	}
	if err := authorizeOwner(principal, rec.UserID, "download"); err != nil {
		return nil, nil, err
	}
	rc, err := uc.store.Open(ctx, rec.UserID, rec.Category, rec.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return rec, rc, nil
}

// DeleteFile removes the stored bytes, then the record. Bytes already gone
// are not an error.
func (uc *LibraryUseCase) DeleteFile(ctx context.Context, principal domain.Principal, fileID int64) error {
	if err := authorizeAdmin(principal, "delete upload"); err != nil {
		return err
	}
	rec, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("fetch upload: %w", err)
	}
	if err := uc.store.Delete(ctx, rec.UserID, rec.Category, rec.Filename); err != nil && !domain.IsKind(err, domain.ErrNotFound) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	if err := uc.repo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("delete upload record: %w", err)
	}
	slog.Info("upload_deleted", "id", fileID, "user_id", rec.UserID, "filename", rec.Filename)
	return nil
}

func (uc *LibraryUseCase) DeleteUser(ctx context.Context, principal domain.Principal, userID string) error {
	if err := authorizeAdmin(principal, "delete user uploads"); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete user uploads", errors.New("user id is required"))
	}
	if err := uc.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user files: %w", err)
	}
	removed, err := uc.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user records: %w", err)
	}
	slog.Info("user_uploads_deleted", "user_id", userID, "records", removed)
	return nil
}

// ArchiveCategory streams a zip of every file stored under the category
// folder into w.
func (uc *LibraryUseCase) ArchiveCategory(ctx context.Context, principal domain.Principal, userID string, category domain.Category, w io.Writer) error {
	if err := authorizeOwner(principal, userID, "archive category"); err != nil {
		return err
	}
	names, err := uc.store.List(ctx, userID, category)
	if err != nil {
		return fmt.Errorf("list category files: %w", err)
	}
	if len(names) == 0 {
		return domain.WrapError(domain.ErrNotFound, "archive category", fmt.Errorf("no files in %q", category))
	}

	zw := zip.NewWriter(w)
	modified := uc.now()
	for _, name := range names {
		if err := uc.addToArchive(ctx, zw, userID, category, name, modified); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func (uc *LibraryUseCase) addToArchive(ctx context.Context, zw *zip.Writer, userID string, category domain.Category, name string, modified time.Time) error {
	rc, err := uc.store.Open(ctx, userID, category, name)
	if err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	defer rc.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("add %q to archive: %w", name, err)
	}
	if _, err := io.Copy(entry, rc); err != nil {
		return fmt.Errorf("write %q to archive: %w", name, err)
	}
	return nil
}

func computeStats(userID string, records []domain.UploadRecord) domain.UserStats {
	counts := make(map[domain.Category]int)
	order := make([]domain.Category, 0)
	for _, rec := range records {
		if _, ok := counts[rec.Category]; !ok {
			order = append(order, rec.Category)
		}
		counts[rec.Category]++
	}

	stats := domain.UserStats{
		UserID:          userID,
		TotalFiles:      len(records),
		TotalCategories: len(counts),
	}
	best := 0
	for _, category := range order {
		if counts[category] > best {
			best = counts[category]
			stats.MostFilesCategory = category
		}
	}
	return stats
}

func authorizeOwner(principal domain.Principal, userID, op string) error {
	if !principal.CanAccess(userID) {
		return domain.WrapError(domain.ErrForbidden, op, fmt.Errorf("user %q may not access files of %q", principal.UserID, userID))
	}
	return nil
}

func authorizeAdmin(principal domain.Principal, op string) error {
	if !principal.IsAdmin {
		return domain.WrapError(domain.ErrForbidden, op, errors.New("admin role required"))
	}
	return nil
}
