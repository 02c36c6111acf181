// Package warnings persists which named warnings a user has already seen.
package warnings

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/staticstore/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Acknowledge records that userID has seen the warning name. It reports
// true when the record is new, false when it already existed.
func (r *PostgresRepository) Acknowledge(ctx context.Context, userID, name string) (bool, error) {
	query := `
		INSERT INTO user_warnings (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, userID, name)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}
