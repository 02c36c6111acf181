package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
)

// Object store drivers accepted in config.S3Driver.
const (
	DriverAWS    = "aws"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// Object is an object body with its stored size. Callers close Body.
type Object struct {
	Size int64
	Body io.ReadCloser
}

// ObjectStore is the bucket surface the S3 backend needs.
type ObjectStore interface {
	// GetObject returns ErrObjectNotFound when key does not exist.
	GetObject(ctx context.Context, key string) (*Object, error)
	PutObject(ctx context.Context, key string, body []byte) error
	PresignPost(ctx context.Context, key string, expires time.Duration) (*models.UploadForm, error)
}

// Dialer opens an authenticated handle to the configured bucket.
type Dialer func(ctx context.Context, config *sc.Config) (ObjectStore, error)

// DialObjectStore connects with the driver named by config.S3Driver.
func DialObjectStore(ctx context.Context, config *sc.Config) (ObjectStore, error) {
	switch config.S3Driver {
	case DriverAWS, "":
		return newAWSStore(ctx, config)
	case DriverMinio:
		return newMinioStore(config)
	default:
		return nil, fmt.Errorf("unknown S3 driver %q", config.S3Driver)
	}
}

func contentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}
