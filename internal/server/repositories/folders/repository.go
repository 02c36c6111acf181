package folders

import (
	"context"

	"github.com/dmitrijs2005/staticstore/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) error
	Update(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	GetByName(ctx context.Context, name string) (*models.Folder, error)
	List(ctx context.Context) ([]*models.Folder, error)
}
