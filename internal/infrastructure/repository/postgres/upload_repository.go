package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, rec *domain.UploadRecord) error {
	err := r.db.QueryRowContext(ctx, `
INSERT INTO uploads (user_id, filename, category, processed_at)
VALUES ($1, $2, $3, $4)
RETURNING id
`, rec.UserID, rec.Filename, string(rec.Category), rec.ProcessedAt).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *UploadRepository) GetByID(ctx context.Context, id int64) (*domain.UploadRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, filename, category, processed_at
FROM uploads
WHERE id = $1
`, id)

	rec, err := scanUpload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get upload", fmt.Errorf("id=%d", id))
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	return &rec, nil
}

func (r *UploadRepository) ListByUser(ctx context.Context, userID string) ([]domain.UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, filename, category, processed_at
FROM uploads
WHERE user_id = $1
ORDER BY id
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query uploads by user: %w", err)
	}
	return collectUploads(rows)
}

func (r *UploadRepository) ListAll(ctx context.Context) ([]domain.UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, filename, category, processed_at
FROM uploads
ORDER BY category, id
`)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	return collectUploads(rows)
}

func (r *UploadRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete upload rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete upload", fmt.Errorf("id=%d", id))
	}
	return nil
}

func (r *UploadRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user uploads: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user uploads rows affected: %w", err)
	}
	return affected, nil
}

type uploadScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row uploadScanner) (domain.UploadRecord, error) {
	var rec domain.UploadRecord
	var category string
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Filename, &category, &rec.ProcessedAt); err != nil {
		return domain.UploadRecord{}, err
	}
	rec.Category = domain.Category(category)
	return rec, nil
}

func collectUploads(rows *sql.Rows) ([]domain.UploadRecord, error) {
	defer rows.Close()

	out := make([]domain.UploadRecord, 0)
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return out, nil
}
