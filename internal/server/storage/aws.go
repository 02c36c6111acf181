package storage

import (
	"bytes"
	"context"
	"errors"
	"time"

	sc "github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	presignPostObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error) {
		return s3.NewPresignClient(c).PresignPostObject(ctx, in, optFns...)
	}
)

// awsStore talks to S3 through aws-sdk-go-v2.
type awsStore struct {
	client *s3.Client
	bucket string
}

func newAWSStore(ctx context.Context, c *sc.Config) (*awsStore, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3AccessKey,
			c.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &awsStore{client: client, bucket: c.S3Bucket}, nil
}

func (s *awsStore) GetObject(ctx context.Context, key string) (*Object, error) {
	out, err := getObject(s.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &Object{Size: aws.ToInt64(out.ContentLength), Body: out.Body}, nil
}

func (s *awsStore) PutObject(ctx context.Context, key string, body []byte) error {
	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType(key)),
	})
	return err
}

func (s *awsStore) PresignPost(ctx context.Context, key string, expires time.Duration) (*models.UploadForm, error) {
	req, err := presignPostObject(s.client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = expires
	})
	if err != nil {
		return nil, err
	}
	return &models.UploadForm{URL: req.URL, Fields: req.Values}, nil
}
