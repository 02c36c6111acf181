// Package folders persists static folders.
package folders

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

// PostgresRepository implements folder storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, name, description, type, is_private, allow_large_uploads, upload_form_ttl, created_at`

// Create inserts a folder. A taken name yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO static_folders (id, name, description, type, is_private, allow_large_uploads, upload_form_ttl)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		folder.ID, folder.Name, folder.Description, string(folder.Type),
		folder.IsPrivate, folder.AllowLargeUploads, folder.UploadFormTTL,
	).Scan(&folder.CreatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing folder.
func (r *PostgresRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := `
		UPDATE static_folders
		SET name = $2, description = $3, is_private = $4, allow_large_uploads = $5, upload_form_ttl = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		folder.ID, folder.Name, folder.Description, folder.IsPrivate, folder.AllowLargeUploads, folder.UploadFormTTL)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT ` + selectColumns + ` FROM static_folders WHERE id = $1`
	return scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Folder, error) {
	query := `SELECT ` + selectColumns + ` FROM static_folders WHERE name = $1`
	return scanOne(r.db.QueryRowContext(ctx, query, name))
}

// List returns all folders ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Folder, error) {
	query := `SELECT ` + selectColumns + ` FROM static_folders ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var result []*models.Folder
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

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Folder, error) {
	var (
		f           models.Folder
		backendType string
	)
	err := s.Scan(&f.ID, &f.Name, &f.Description, &backendType, &f.IsPrivate,
		&f.AllowLargeUploads, &f.UploadFormTTL, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	f.Type = models.BackendType(backendType)
	return &f, nil
}

func scanOne(row *sql.Row) (*models.Folder, error) {
	f, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select folder: %w", err)
	}
	return f, nil
}
