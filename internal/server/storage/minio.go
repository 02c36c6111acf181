package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const minioNoSuchKey = "NoSuchKey"

// minioStore talks to any S3-compatible endpoint through minio-go.
type minioStore struct {
	client *minio.Client
	bucket string
}

func newMinioStore(c *sc.Config) (*minioStore, error) {
	endpoint, secure, err := minioEndpoint(c.S3BaseEndpoint)
	if err != nil {
		return nil, err
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.S3AccessKey, c.S3SecretKey, ""),
		Secure: secure,
		Region: c.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &minioStore{client: client, bucket: c.S3Bucket}, nil
}

// minioEndpoint turns a base endpoint URL into minio's host + TLS flag. An
// empty endpoint means AWS.
func minioEndpoint(raw string) (string, bool, error) {
	if raw == "" {
		return "s3.amazonaws.com", true, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("invalid S3 endpoint %q", raw)
	}
	return u.Host, u.Scheme == "https", nil
}

func (s *minioStore) GetObject(ctx context.Context, key string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == minioNoSuchKey {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &Object{Size: info.Size, Body: obj}, nil
}

func (s *minioStore) PutObject(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	return err
}

func (s *minioStore) PresignPost(ctx context.Context, key string, expires time.Duration) (*models.UploadForm, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKey(key); err != nil {
		return nil, err
	}
	if err := policy.SetExpires(time.Now().UTC().Add(expires)); err != nil {
		return nil, err
	}
	u, fields, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, err
	}
	return &models.UploadForm{URL: u.String(), Fields: fields}, nil
}
