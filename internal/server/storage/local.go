package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/filex"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
)

// LocalBackend keeps files under root/<folder>/<file> and serves them from
// baseURL/static-file/<folder>/<file>.
type LocalBackend struct {
	root    string
	baseURL string
}

func NewLocalBackend(root, baseURL string) *LocalBackend {
	return &LocalBackend{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *LocalBackend) Type() models.BackendType {
	return models.BackendLocal
}

// Read returns nil for a file that was never written.
func (b *LocalBackend) Read(ctx context.Context, f *models.File) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.Path(f))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func (b *LocalBackend) Write(ctx context.Context, f *models.File, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(b.Path(f), data); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}

func (b *LocalBackend) URL(f *models.File) string {
	return b.baseURL + "/static-file/" + url.PathEscape(f.Folder.Name) + "/" + url.PathEscape(f.Name)
}

func (b *LocalBackend) Path(f *models.File) string {
	return filepath.Join(b.root, f.Folder.Name, f.Name)
}

// PresignPost is only offered by object stores.
func (b *LocalBackend) PresignPost(context.Context, *models.File) (*models.UploadForm, error) {
	return nil, common.ErrNotS3Bucket
}
