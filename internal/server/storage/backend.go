// Package storage routes file content to the backend selected by the
// owning folder: the local filesystem or an S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/staticstore/internal/common"
	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
)

// MaxObjectReadSize is the largest object Read returns. Larger objects read
// as empty content.
// TODO: make the ceiling configurable per folder instead of silently returning nothing.
const MaxObjectReadSize = 10 * 1000 * 1000

// ErrObjectNotFound is returned by Read when the remote object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Backend is implemented by every storage variant. Files passed in must have
// their Folder loaded.
type Backend interface {
	Type() models.BackendType
	// Read returns the file's bytes; nil means no content.
	Read(ctx context.Context, f *models.File) ([]byte, error)
	// Write stores data as the file's content, replacing what was there.
	Write(ctx context.Context, f *models.File, data []byte) error
	// URL is the public address of the file's content.
	URL(f *models.File) string
	// Path locates the content inside the backend.
	Path(f *models.File) string
	// PresignPost returns a browser upload form scoped to the file.
	PresignPost(ctx context.Context, f *models.File) (*models.UploadForm, error)
}

// RemoteError wraps a failure reported by the object store.
type RemoteError struct {
	Op  string
	Key string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Registry hands out the backend of a folder. Backends are built on every
// call from the immutable configuration.
type Registry struct {
	config *sc.Config
	dial   Dialer
}

// NewRegistry selects the object-store driver named by config.S3Driver.
func NewRegistry(config *sc.Config) *Registry {
	dial := DialObjectStore
	if config.S3Driver == DriverMemory {
		dial = NewMemoryStore(config.S3Bucket).Dial
	}
	return NewRegistryWithDialer(config, dial)
}

// NewRegistryWithDialer uses dial to reach the object store.
func NewRegistryWithDialer(config *sc.Config, dial Dialer) *Registry {
	return &Registry{config: config, dial: dial}
}

// For returns the backend configured for folder.
func (r *Registry) For(folder *models.Folder) (Backend, error) {
	switch folder.Type {
	case models.BackendLocal:
		return NewLocalBackend(r.config.LocalRoot, r.config.PublicBaseURL), nil
	case models.BackendS3:
		return NewS3Backend(r.config, r.dial), nil
	default:
		return nil, fmt.Errorf("folder %q: %w", folder.Name, common.ErrInvalidBackendType)
	}
}
