package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/logging"
	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/dmitrijs2005/staticstore/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileFixture struct {
	repos *memRepos
	mem   *storage.MemoryStore
	cfg   *sc.Config
}

func newFileFixture(t *testing.T) *fileFixture {
	fx := &fileFixture{
		repos: newMemRepos(),
		mem:   storage.NewMemoryStore("static"),
		cfg: &sc.Config{
			S3Bucket:      "static",
			S3PublicHost:  "s3.amazonaws.com",
			LocalRoot:     t.TempDir(),
			PublicBaseURL: "http://localhost:8080",
		},
	}
	fx.repos.addFolder(models.Folder{ID: "s3", Name: "media", Type: models.BackendS3, UploadFormTTL: 600})
	fx.repos.addFolder(models.Folder{ID: "priv", Name: "secret", Type: models.BackendS3, IsPrivate: true})
	fx.repos.addFolder(models.Folder{ID: "loc", Name: "assets", Type: models.BackendLocal})
	return fx
}

func (fx *fileFixture) service(t *testing.T) (*FileService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	registry := storage.NewRegistryWithDialer(fx.cfg, fx.mem.Dial)
	return NewFileService(db, fx.repos, registry, logging.Nop{}), mock
}

func TestValidateFileName(t *testing.T) {
	for _, bad := range []string{"", "a/b", "..", "x..y"} {
		assert.ErrorIs(t, ValidateFileName(bad), common.ErrInvalidFileName, bad)
	}
	assert.NoError(t, ValidateFileName("logo.png"))
}

func TestFileService_CreateAndReadBack(t *testing.T) {
	fx := newFileFixture(t)
	svc, mock := fx.service(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	f, err := svc.Create(context.Background(), "s3", "clip.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "media/clip.txt", f.StorageKey())

	bin, err := svc.GetFileBinary(context.Background(), "u1", f.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(bin.Data))
	assert.Empty(t, bin.Warning)
}

func TestFileService_CreateRollsBackOnWriteFailure(t *testing.T) {
	fx := newFileFixture(t)
	db, mock := newMockDB(t)
	registry := storage.NewRegistryWithDialer(fx.cfg, func(context.Context, *sc.Config) (storage.ObjectStore, error) {
		return nil, errBoom
	})
	svc := NewFileService(db, fx.repos, registry, logging.Nop{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "s3", "clip.txt", []byte("hello"))
	var re *storage.RemoteError
	assert.ErrorAs(t, err, &re)
}

func TestFileService_CreateInvalidName(t *testing.T) {
	fx := newFileFixture(t)
	svc, _ := fx.service(t)

	_, err := svc.Create(context.Background(), "s3", "../etc", nil)
	assert.ErrorIs(t, err, common.ErrInvalidFileName)
}

func TestFileService_MissingObjectWarnsOnce(t *testing.T) {
	fx := newFileFixture(t)
	fx.repos.addFile(models.File{ID: "f1", FolderID: "s3", Name: "gone.bin"})
	svc, mock := fx.service(t)

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	bin, err := svc.GetFileBinary(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Nil(t, bin.Data)
	assert.Equal(t, common.FileEmptyOnS3, bin.Warning)

	bin, err = svc.GetFileBinary(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Nil(t, bin.Data)
	assert.Empty(t, bin.Warning)
}

// cancelingStore cancels the request while the object lookup is in flight.
type cancelingStore struct {
	storage.ObjectStore
	cancel context.CancelFunc
}

func (s cancelingStore) GetObject(context.Context, string) (*storage.Object, error) {
	s.cancel()
	return nil, storage.ErrObjectNotFound
}

func TestFileService_AckSurvivesCanceledRequest(t *testing.T) {
	fx := newFileFixture(t)
	fx.repos.addFile(models.File{ID: "f1", FolderID: "s3", Name: "gone.bin"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, mock := newMockDB(t)
	registry := storage.NewRegistryWithDialer(fx.cfg, func(context.Context, *sc.Config) (storage.ObjectStore, error) {
		return cancelingStore{ObjectStore: fx.mem, cancel: cancel}, nil
	})
	svc := NewFileService(db, fx.repos, registry, logging.Nop{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	bin, err := svc.GetFileBinary(ctx, "u1", "f1")
	require.NoError(t, err)
	require.Error(t, ctx.Err())
	assert.Equal(t, common.FileEmptyOnS3, bin.Warning)
	assert.True(t, fx.repos.acks["u1|"+missingObjectWarning("f1")])
}

func TestFileService_AckFailureDoesNotFailRead(t *testing.T) {
	fx := newFileFixture(t)
	fx.repos.addFile(models.File{ID: "f1", FolderID: "s3", Name: "gone.bin"})
	fx.repos.ackErr = errBoom
	svc, mock := fx.service(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	bin, err := svc.GetFileBinary(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Nil(t, bin.Data)
	assert.Equal(t, common.FileEmptyOnS3, bin.Warning)
}

func TestFileService_SetFileBinary(t *testing.T) {
	fx := newFileFixture(t)
	fx.repos.addFile(models.File{ID: "f1", FolderID: "s3", Name: "a.txt"})
	fx.repos.addFile(models.File{ID: "big", FolderID: "s3", Name: "big.iso", IsLargeFile: true})
	svc, mock := fx.service(t)
	ctx := context.Background()

	require.NoError(t, svc.SetFileBinary(ctx, "f1", nil))
	require.NoError(t, svc.SetFileBinary(ctx, "f1", []byte("v1")))
	bin, err := svc.GetFileBinary(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(bin.Data))

	// Large files never take content through the service.
	require.NoError(t, svc.SetFileBinary(ctx, "big", []byte("local bytes")))
	mock.ExpectBegin()
	mock.ExpectCommit()
	bin, err = svc.GetFileBinary(ctx, "u1", "big")
	require.NoError(t, err)
	assert.Nil(t, bin.Data)
}

func TestFileService_GetView(t *testing.T) {
	fx := newFileFixture(t)
	fx.repos.addFile(models.File{ID: "p1", FolderID: "priv", Name: "doc.pdf"})
	fx.repos.addFile(models.File{ID: "l1", FolderID: "loc", Name: "site.css"})
	svc, _ := fx.service(t)

	v, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "_private/secret/doc.pdf", v.StorageKey)
	assert.Equal(t, "https://s3.amazonaws.com/static/_private/secret/doc.pdf", v.URL)
	assert.Equal(t, v.URL, v.Path)

	fx.cfg.CloudFrontDomain = "https://cdn.example.com"
	v, err = svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/_private/secret/doc.pdf", v.URL)

	v, err = svc.Get(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/static-file/assets/site.css", v.URL)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileService_Static(t *testing.T) {
	fx := newFileFixture(t)
	svc, mock := fx.service(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Create(ctx, "loc", "site.css", []byte("body{}"))
	require.NoError(t, err)
	fx.repos.addFile(models.File{ID: "s1", FolderID: "s3", Name: "clip.mp4"})

	content, err := svc.Static(ctx, "assets", "site.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(content.Data))
	assert.Empty(t, content.RedirectURL)

	content, err = svc.Static(ctx, "media", "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.amazonaws.com/static/media/clip.mp4", content.RedirectURL)
}

func TestFileService_List(t *testing.T) {
	fx := newFileFixture(t)
	fx.repos.addFile(models.File{ID: "p1", FolderID: "priv", Name: "doc.pdf"})
	fx.repos.addFile(models.File{ID: "p2", FolderID: "priv", Name: "notes.txt"})
	fx.repos.addFile(models.File{ID: "m1", FolderID: "s3", Name: "clip.mp4"})
	svc, _ := fx.service(t)

	views, err := svc.List(context.Background(), "priv")
	require.NoError(t, err)
	require.Len(t, views, 2)
	var keys []string
	for _, v := range views {
		keys = append(keys, v.StorageKey)
		assert.Equal(t, "https://s3.amazonaws.com/static/"+v.StorageKey, v.URL)
	}
	assert.ElementsMatch(t, []string{"_private/secret/doc.pdf", "_private/secret/notes.txt"}, keys)

	_, err = svc.List(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
