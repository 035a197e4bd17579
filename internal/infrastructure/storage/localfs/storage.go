package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/storage"
)

// Storage keeps organized files under <basePath>/user_<id>/<category>/.
type Storage struct {
	basePath string
	locks    *storage.KeyedMutex
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath, locks: storage.NewKeyedMutex()}, nil
}

func (s *Storage) Place(_ context.Context, userID string, category domain.Category, filename string, body io.Reader) (string, error) {
	if err := storage.ValidateSegment("filename", filename); err != nil {
		return "", err
	}
	rel, err := storage.CategoryDir(userID, category)
	if err != nil {
		return "", err
	}
	dir := s.abs(rel)

	unlock := s.locks.Lock(rel)
	defer unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}

	for attempt := 0; attempt < storage.MaxCollisionAttempts; attempt++ {
		name := storage.CandidateName(filename, attempt)
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create file: %w", err)
		}
		if err := writeAndClose(f, body); err != nil {
			_ = os.Remove(f.Name())
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("no free name for %q after %d attempts", filename, storage.MaxCollisionAttempts)
}

func (s *Storage) Open(_ context.Context, userID string, category domain.Category, filename string) (io.ReadCloser, error) {
	path, err := s.filePath(userID, category, filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, notFoundOr("open file", err)
	}
	return f, nil
}

func (s *Storage) Delete(_ context.Context, userID string, category domain.Category, filename string) error {
	path, err := s.filePath(userID, category, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return notFoundOr("remove file", err)
	}
	return nil
}

// List returns the file names of a category folder; a missing folder is empty.
func (s *Storage) List(_ context.Context, userID string, category domain.Category) ([]string, error) {
	rel, err := storage.CategoryDir(userID, category)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.abs(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read category dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *Storage) DeleteUser(_ context.Context, userID string) error {
	rel, err := storage.UserDir(userID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(s.abs(rel)); err != nil {
		return fmt.Errorf("remove user dir: %w", err)
	}
	return nil
}

func (s *Storage) Stage(_ context.Context, userID, filename string, body io.Reader) (string, error) {
	if err := storage.ValidateSegment("filename", filename); err != nil {
		return "", err
	}
	rel, err := storage.StagingDir(userID)
	if err != nil {
		return "", err
	}
	dir := s.abs(rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	key := uuid.NewString() + "_" + filename
	f, err := os.OpenFile(filepath.Join(dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if err := writeAndClose(f, body); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return key, nil
}

func (s *Storage) OpenStaged(_ context.Context, userID, key string) (io.ReadCloser, error) {
	path, err := s.stagedPath(userID, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, notFoundOr("open staged file", err)
	}
	return f, nil
}

func (s *Storage) RemoveStaged(_ context.Context, userID, key string) error {
	path, err := s.stagedPath(userID, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

func (s *Storage) abs(rel string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(rel))
}

func (s *Storage) filePath(userID string, category domain.Category, filename string) (string, error) {
	if err := storage.ValidateSegment("filename", filename); err != nil {
		return "", err
	}
	rel, err := storage.CategoryDir(userID, category)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.abs(rel), filename), nil
}

func (s *Storage) stagedPath(userID, key string) (string, error) {
	if err := storage.ValidateSegment("staged key", key); err != nil {
		return "", err
	}
	rel, err := storage.StagingDir(userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.abs(rel), key), nil
}

func writeAndClose(f *os.File, body io.Reader) error {
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return domain.WrapError(domain.ErrNotFound, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
