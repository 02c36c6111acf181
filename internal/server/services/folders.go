// Package services contains server-side business logic: folder policy, file
// content routing and the large-file upload handshake.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/dbx"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// FolderUpdate carries the fields a PATCH may change. Nil means unchanged.
type FolderUpdate struct {
	Name              *string
	Description       *string
	IsPrivate         *bool
	AllowLargeUploads *bool
	UploadFormTTL     *int
}

type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager) *FolderService {
	return &FolderService{db: db, repomanager: m}
}

// ValidateFolderName rejects empty names, names containing '.', names
// starting with '/' and the private namespace itself.
func ValidateFolderName(name string) error {
	if name == "" || strings.Contains(name, ".") || strings.HasPrefix(name, "/") || name == common.PrivateNamespace {
		return common.ErrInvalidFolderName
	}
	return nil
}

// Create stores a new folder. Type defaults to local and the upload form TTL
// to models.DefaultUploadFormTTL.
func (s *FolderService) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if err := ValidateFolderName(folder.Name); err != nil {
		return nil, err
	}
	if folder.Type == "" {
		folder.Type = models.BackendLocal
	}
	if !folder.Type.Valid() {
		return nil, common.ErrInvalidBackendType
	}
	if folder.UploadFormTTL < 0 {
		return nil, common.ErrInvalidUploadFormTTL
	}
	if folder.UploadFormTTL == 0 {
		folder.UploadFormTTL = models.DefaultUploadFormTTL
	}
	folder.ID = uuid.NewString()

	if err := s.repomanager.Folders(s.db).Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Update applies upd to the folder. Name and privacy cannot change once the
// folder holds files: every existing object key depends on both.
func (s *FolderService) Update(ctx context.Context, id string, upd FolderUpdate) (*models.Folder, error) {
	var folder *models.Folder
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Folders(tx)

		var err error
		folder, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		rename := upd.Name != nil && *upd.Name != folder.Name
		privacy := upd.IsPrivate != nil && *upd.IsPrivate != folder.IsPrivate

		if rename {
			if err := ValidateFolderName(*upd.Name); err != nil {
				return err
			}
		}
		if upd.UploadFormTTL != nil && *upd.UploadFormTTL <= 0 {
			return common.ErrInvalidUploadFormTTL
		}

		if rename || privacy {
			n, err := s.repomanager.Files(tx).CountByFolder(ctx, folder.ID)
			if err != nil {
				return fmt.Errorf("error counting files: %w", err)
			}
			if n > 0 && rename {
				return common.ErrFolderNameLocked
			}
			if n > 0 {
				return common.ErrFolderPrivacyLocked
			}
		}

		if rename {
			folder.Name = *upd.Name
		}
		if privacy {
			folder.IsPrivate = *upd.IsPrivate
		}
		if upd.Description != nil {
			folder.Description = *upd.Description
		}
		if upd.AllowLargeUploads != nil {
			folder.AllowLargeUploads = *upd.AllowLargeUploads
		}
		if upd.UploadFormTTL != nil {
			folder.UploadFormTTL = *upd.UploadFormTTL
		}

		return repo.Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *FolderService) Get(ctx context.Context, id string) (*models.Folder, error) {
	return s.repomanager.Folders(s.db).GetByID(ctx, id)
}

func (s *FolderService) List(ctx context.Context) ([]*models.Folder, error) {
	return s.repomanager.Folders(s.db).List(ctx)
}
