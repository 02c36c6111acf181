// Package files persists static file records.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/dbx"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/pgerr"
)

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectJoined = `
	SELECT f.id, f.folder_id, f.name, f.is_large_file, f.created_at,
		d.id, d.name, d.description, d.type, d.is_private, d.allow_large_uploads, d.upload_form_ttl, d.created_at
	FROM static_files f
	JOIN static_folders d ON d.id = f.folder_id
`

// Create inserts a file record. The name must be unique within its folder,
// otherwise common.ErrorAlreadyExists is returned.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO static_files (id, folder_id, name, is_large_file)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, file.ID, file.FolderID, file.Name, file.IsLargeFile).Scan(&file.CreatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the file with its folder loaded.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	return scanOne(r.db.QueryRowContext(ctx, selectJoined+` WHERE f.id = $1`, id))
}

// GetByIDForUpdate is GetByID inside a transaction, locking the file row and
// holding a share lock on its folder until the transaction ends, so the
// folder's policy cannot change underneath the caller.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.File, error) {
	return scanOne(r.db.QueryRowContext(ctx, selectJoined+` WHERE f.id = $1 FOR UPDATE OF f FOR SHARE OF d`, id))
}

// GetByFolderAndName looks a file up by its public address.
func (r *PostgresRepository) GetByFolderAndName(ctx context.Context, folderName, name string) (*models.File, error) {
	return scanOne(r.db.QueryRowContext(ctx, selectJoined+` WHERE d.name = $1 AND f.name = $2`, folderName, name))
}

// ListByFolder returns the folder's files ordered by name.
func (r *PostgresRepository) ListByFolder(ctx context.Context, folderID string) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, selectJoined+` WHERE f.folder_id = $1 ORDER BY f.name`, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountByFolder(ctx context.Context, folderID string) (int64, error) {
	var n int64
	query := `SELECT count(*) FROM static_files WHERE folder_id = $1`
	if err := r.db.QueryRowContext(ctx, query, folderID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}

// SetLargeFile flips the large-file flag. Exactly one row must be affected.
func (r *PostgresRepository) SetLargeFile(ctx context.Context, id string, isLarge bool) error {
	query := `UPDATE static_files SET is_large_file = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, isLarge)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.File, error) {
	var (
		f           models.File
		d           models.Folder
		backendType string
	)
	err := s.Scan(&f.ID, &f.FolderID, &f.Name, &f.IsLargeFile, &f.CreatedAt,
		&d.ID, &d.Name, &d.Description, &backendType, &d.IsPrivate, &d.AllowLargeUploads, &d.UploadFormTTL, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.Type = models.BackendType(backendType)
	f.Folder = &d
	return &f, nil
}

func scanOne(row *sql.Row) (*models.File, error) {
	f, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return f, nil
}
