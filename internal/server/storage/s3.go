package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("staticstore/storage")

// S3Backend stores files as objects keyed by models.StorageKey.
type S3Backend struct {
	config *sc.Config
	dial   Dialer
}

func NewS3Backend(config *sc.Config, dial Dialer) *S3Backend {
	return &S3Backend{config: config, dial: dial}
}

func (b *S3Backend) Type() models.BackendType {
	return models.BackendS3
}

// Read fetches the object. A missing object yields ErrObjectNotFound; an
// object over MaxObjectReadSize yields nil content and no error.
func (b *S3Backend) Read(ctx context.Context, f *models.File) ([]byte, error) {
	key := f.StorageKey()
	ctx, span := tracer.Start(ctx, "s3.get_object", trace.WithAttributes(attribute.String("object_key", key)))
	defer span.End()

	store, err := b.dial(ctx, b.config)
	if err != nil {
		return nil, b.fail(span, "dial", key, err)
	}

	obj, err := store.GetObject(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		span.SetAttributes(attribute.Bool("found", false))
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, b.fail(span, "get", key, err)
	}
	defer obj.Body.Close()

	span.SetAttributes(attribute.Int64("size_bytes", obj.Size))
	if obj.Size > MaxObjectReadSize {
		span.SetAttributes(attribute.Bool("oversized", true))
		return nil, nil
	}

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, b.fail(span, "read", key, err)
	}
	return data, nil
}

// Write uploads data under the file's key. Large files are skipped: their
// content only ever arrives through a direct browser upload.
func (b *S3Backend) Write(ctx context.Context, f *models.File, data []byte) error {
	if f.IsLargeFile {
		return nil
	}
	key := f.StorageKey()
	ctx, span := tracer.Start(ctx, "s3.put_object", trace.WithAttributes(
		attribute.String("object_key", key),
		attribute.Int("size_bytes", len(data)),
	))
	defer span.End()

	store, err := b.dial(ctx, b.config)
	if err != nil {
		return b.fail(span, "dial", key, err)
	}
	if err := store.PutObject(ctx, key, data); err != nil {
		return b.fail(span, "put", key, err)
	}
	return nil
}

// URL is <cloudfront>/<key> when a CDN is configured, otherwise
// https://<public host>/<bucket>/<key>.
func (b *S3Backend) URL(f *models.File) string {
	key := f.StorageKey()
	if b.config.CloudFrontDomain != "" {
		return strings.Join([]string{b.config.CloudFrontDomain, key}, "/")
	}
	return fmt.Sprintf("https://%s/%s/%s", b.config.S3PublicHost, b.config.S3Bucket, key)
}

// Path resolves exactly like URL.
func (b *S3Backend) Path(f *models.File) string {
	return b.URL(f)
}

// PresignPost builds an upload form for the file's key that expires after
// the folder's upload form TTL.
func (b *S3Backend) PresignPost(ctx context.Context, f *models.File) (*models.UploadForm, error) {
	key := f.StorageKey()
	ttl := f.Folder.UploadFormExpiry()
	ctx, span := tracer.Start(ctx, "s3.presign_post", trace.WithAttributes(
		attribute.String("object_key", key),
		attribute.String("expires_in", ttl.String()),
	))
	defer span.End()

	store, err := b.dial(ctx, b.config)
	if err != nil {
		return nil, b.fail(span, "dial", key, err)
	}
	form, err := store.PresignPost(ctx, key, ttl)
	if err != nil {
		return nil, b.fail(span, "presign", key, err)
	}
	return form, nil
}

func (b *S3Backend) fail(span trace.Span, op, key string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	return &RemoteError{Op: op, Key: key, Err: err}
}
