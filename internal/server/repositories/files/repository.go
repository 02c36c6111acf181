package files

import (
	"context"

	"github.com/dmitrijs2005/staticstore/internal/server/models"
)

// Repository loads files together with their folder.
type Repository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.File, error)
	GetByFolderAndName(ctx context.Context, folderName, name string) (*models.File, error)
	ListByFolder(ctx context.Context, folderID string) ([]*models.File, error)
	CountByFolder(ctx context.Context, folderID string) (int64, error)
	SetLargeFile(ctx context.Context, id string, isLarge bool) error
}
