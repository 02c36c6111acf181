package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/dbx"
	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/repomanager"
)

// UploadService starts direct browser uploads of large files to the object
// store. Completion is not reported back.
type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	backends    BackendResolver
	uploaderURL string
}

func NewUploadService(db *sql.DB, m repomanager.RepositoryManager, backends BackendResolver, cfg *sc.Config) *UploadService {
	uploader := cfg.UploaderURL
	if uploader == "" {
		uploader = sc.DefaultUploaderURL
	}
	return &UploadService{db: db, repomanager: m, backends: backends, uploaderURL: uploader}
}

// StartLargeUpload flags the file as large and returns the uploader page URL
// carrying a presigned POST form. The folder policy is checked and the flag
// committed in one transaction that locks the file and its folder; the flag
// stays set if presigning fails.
func (s *UploadService) StartLargeUpload(ctx context.Context, fileID string) (string, error) {
	var file *models.File
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		var err error
		file, err = repo.GetByIDForUpdate(ctx, fileID)
		if err != nil {
			return err
		}
		if file.Folder.Type != models.BackendS3 {
			return common.ErrNotS3Bucket
		}
		if !file.Folder.AllowLargeUploads {
			return common.ErrFolderNotForLargeUploads
		}

		if err := repo.SetLargeFile(ctx, file.ID, true); err != nil {
			return fmt.Errorf("error marking large file: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	file.IsLargeFile = true

	backend, err := s.backends.For(file.Folder)
	if err != nil {
		return "", err
	}
	form, err := backend.PresignPost(ctx, file)
	if err != nil {
		return "", err
	}
	return UploaderRedirectURL(s.uploaderURL, form)
}

// UploaderRedirectURL encodes form as base64 JSON in the data parameter of uploader.
func UploaderRedirectURL(uploader string, form *models.UploadForm) (string, error) {
	payload, err := json.Marshal(form)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(uploader)
	if err != nil {
		return "", fmt.Errorf("invalid uploader url: %w", err)
	}
	q := u.Query()
	q.Set("data", base64.StdEncoding.EncodeToString(payload))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
