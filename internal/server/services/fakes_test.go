package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/dbx"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/files"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/folders"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/warnings"
)

// memRepos is an in-memory RepositoryManager. The DBTX passed in is ignored,
// so transactions are only visible through sqlmock expectations.
type memRepos struct {
	mu       sync.Mutex
	folders  map[string]models.Folder
	files    map[string]models.File
	acks     map[string]bool
	ackErr   error
	setLarge error
	// locked lists ids read with GetByIDForUpdate.
	locked []string
}

func newMemRepos() *memRepos {
	return &memRepos{
		folders: map[string]models.Folder{},
		files:   map[string]models.File{},
		acks:    map[string]bool{},
	}
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepos) Folders(dbx.DBTX) folders.Repository          { return memFolders{m} }
func (m *memRepos) Files(dbx.DBTX) files.Repository              { return memFiles{m} }
func (m *memRepos) Warnings(dbx.DBTX) warnings.Repository        { return memWarnings{m} }

func (m *memRepos) addFolder(f models.Folder) *models.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[f.ID] = f
	return &f
}

func (m *memRepos) addFile(f models.File) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.Folder = nil
	m.files[f.ID] = f
}

func (m *memRepos) file(id string) models.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[id]
}

type memFolders struct{ m *memRepos }

func (r memFolders) Create(_ context.Context, f *models.Folder) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.folders {
		if existing.Name == f.Name {
			return common.ErrorAlreadyExists
		}
	}
	r.m.folders[f.ID] = *f
	return nil
}

func (r memFolders) Update(_ context.Context, f *models.Folder) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.folders[f.ID]; !ok {
		return common.ErrorNotFound
	}
	r.m.folders[f.ID] = *f
	return nil
}

func (r memFolders) GetByID(_ context.Context, id string) (*models.Folder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.folders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &f, nil
}

func (r memFolders) GetByName(_ context.Context, name string) (*models.Folder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, f := range r.m.folders {
		if f.Name == name {
			return &f, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memFolders) List(context.Context) ([]*models.Folder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Folder, 0, len(r.m.folders))
	for _, f := range r.m.folders {
		out = append(out, &f)
	}
	return out, nil
}

type memFiles struct{ m *memRepos }

func (r memFiles) withFolder(f models.File) *models.File {
	folder := r.m.folders[f.FolderID]
	f.Folder = &folder
	return &f
}

func (r memFiles) Create(_ context.Context, f *models.File) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.files {
		if existing.FolderID == f.FolderID && existing.Name == f.Name {
			return common.ErrorAlreadyExists
		}
	}
	cp := *f
	cp.Folder = nil
	r.m.files[f.ID] = cp
	return nil
}

func (r memFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.withFolder(f), nil
}

func (r memFiles) GetByIDForUpdate(ctx context.Context, id string) (*models.File, error) {
	r.m.mu.Lock()
	r.m.locked = append(r.m.locked, id)
	r.m.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r memFiles) GetByFolderAndName(_ context.Context, folderName, name string) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, f := range r.m.files {
		if f.Name == name && r.m.folders[f.FolderID].Name == folderName {
			return r.withFolder(f), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memFiles) ListByFolder(_ context.Context, folderID string) ([]*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.File
	for _, f := range r.m.files {
		if f.FolderID == folderID {
			out = append(out, r.withFolder(f))
		}
	}
	return out, nil
}

func (r memFiles) CountByFolder(ctx context.Context, folderID string) (int64, error) {
	list, err := r.ListByFolder(ctx, folderID)
	return int64(len(list)), err
}

func (r memFiles) SetLargeFile(_ context.Context, id string, isLarge bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.setLarge != nil {
		return r.m.setLarge
	}
	f, ok := r.m.files[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.IsLargeFile = isLarge
	r.m.files[id] = f
	return nil
}

type memWarnings struct{ m *memRepos }

func (r memWarnings) Acknowledge(_ context.Context, userID, name string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.ackErr != nil {
		return false, r.m.ackErr
	}
	k := userID + "|" + name
	if r.m.acks[k] {
		return false, nil
	}
	r.m.acks[k] = true
	return true, nil
}

// newMockDB returns a sqlmock-backed *sql.DB whose expectations are checked
// at cleanup.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var errBoom = errors.New("boom")
