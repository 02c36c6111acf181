package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/dbx"
	"github.com/dmitrijs2005/staticstore/internal/logging"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/staticstore/internal/server/storage"
	"github.com/google/uuid"
)

// BackendResolver returns the storage backend of a folder.
type BackendResolver interface {
	For(folder *models.Folder) (storage.Backend, error)
}

// FileView is a file with its resolved storage locations.
type FileView struct {
	*models.File
	StorageKey string
	URL        string
	Path       string
}

// StaticContent is what the public static route serves: either bytes or a
// redirect to the object store.
type StaticContent struct {
	Name        string
	Data        []byte
	RedirectURL string
}

type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	backends    BackendResolver
	logger      logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, backends BackendResolver, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		backends:    backends,
		logger:      logger.With("component", "files"),
	}
}

// ValidateFileName rejects empty names and names that could escape the folder.
func ValidateFileName(name string) error {
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return common.ErrInvalidFileName
	}
	return nil
}

// missingObjectWarning names the acknowledgment of a missing object for one file.
func missingObjectWarning(fileID string) string {
	return "s3_file_missing." + fileID
}

// Create adds a file to a folder and stores data as its content. The record
// is rolled back when the content cannot be written.
func (s *FileService) Create(ctx context.Context, folderID, name string, data []byte) (*models.File, error) {
	if err := ValidateFileName(name); err != nil {
		return nil, err
	}

	file := &models.File{ID: uuid.NewString(), FolderID: folderID, Name: name}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		folder, err := s.repomanager.Folders(tx).GetByID(ctx, folderID)
		if err != nil {
			return err
		}
		file.Folder = folder

		if err := s.repomanager.Files(tx).Create(ctx, file); err != nil {
			return err
		}
		return s.write(ctx, file, data)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "file created", "folder", file.Folder.Name, "file", file.Name, "size", len(data))
	return file, nil
}

// Get returns the file together with its storage key, URL and path.
func (s *FileService) Get(ctx context.Context, id string) (*FileView, error) {
	file, err := s.repomanager.Files(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	backend, err := s.backends.For(file.Folder)
	if err != nil {
		return nil, err
	}
	return &FileView{
		File:       file,
		StorageKey: file.StorageKey(),
		URL:        backend.URL(file),
		Path:       backend.Path(file),
	}, nil
}

// List returns the files of a folder with their locations.
func (s *FileService) List(ctx context.Context, folderID string) ([]*FileView, error) {
	folder, err := s.repomanager.Folders(s.db).GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Files(s.db).ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	backend, err := s.backends.For(folder)
	if err != nil {
		return nil, err
	}

	views := make([]*FileView, 0, len(list))
	for _, f := range list {
		views = append(views, &FileView{
			File:       f,
			StorageKey: f.StorageKey(),
			URL:        backend.URL(f),
			Path:       backend.Path(f),
		})
	}
	return views, nil
}

// GetFileBinary reads the file's content. When the backing object is missing
// the read succeeds with no content, and the user is warned the first time.
// The acknowledgment is committed on its own, independent of ctx's fate.
func (s *FileService) GetFileBinary(ctx context.Context, userID, id string) (*models.FileBinary, error) {
	file, err := s.repomanager.Files(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	backend, err := s.backends.For(file.Folder)
	if err != nil {
		return nil, err
	}

	data, err := backend.Read(ctx, file)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn(ctx, "object missing", "key", file.StorageKey(), "file_id", file.ID)

		first, ackErr := s.acknowledge(ctx, userID, missingObjectWarning(file.ID))
		if ackErr != nil {
			s.logger.Error(ctx, "failed to acknowledge warning", "file_id", file.ID, "user_id", userID, "error", ackErr)
			return &models.FileBinary{Warning: common.FileEmptyOnS3}, nil
		}
		if first {
			return &models.FileBinary{Warning: common.FileEmptyOnS3}, nil
		}
		return &models.FileBinary{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.FileBinary{Data: data}, nil
}

func (s *FileService) acknowledge(ctx context.Context, userID, name string) (bool, error) {
	var first bool
	err := dbx.WithDetachedTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		first, err = s.repomanager.Warnings(tx).Acknowledge(ctx, userID, name)
		return err
	})
	return first, err
}

// SetFileBinary replaces the file's content. Empty data is ignored.
func (s *FileService) SetFileBinary(ctx context.Context, id string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	file, err := s.repomanager.Files(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.write(ctx, file, data)
}

func (s *FileService) write(ctx context.Context, file *models.File, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	backend, err := s.backends.For(file.Folder)
	if err != nil {
		return err
	}
	if err := backend.Write(ctx, file, data); err != nil {
		return fmt.Errorf("error writing %s: %w", file.StorageKey(), err)
	}
	return nil
}

// Static resolves the public address <folder>/<name>. Local content is read
// and returned; object store content is served by redirect.
func (s *FileService) Static(ctx context.Context, folderName, name string) (*StaticContent, error) {
	file, err := s.repomanager.Files(s.db).GetByFolderAndName(ctx, folderName, name)
	if err != nil {
		return nil, err
	}
	backend, err := s.backends.For(file.Folder)
	if err != nil {
		return nil, err
	}
	if backend.Type() == models.BackendS3 {
		return &StaticContent{Name: file.Name, RedirectURL: backend.URL(file)}, nil
	}
	data, err := backend.Read(ctx, file)
	if err != nil {
		return nil, err
	}
	return &StaticContent{Name: file.Name, Data: data}, nil
}
