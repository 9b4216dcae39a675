package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// blobStore holds uploaded images (progress photos, avatars) by key.
type blobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	// Get returns errNotFound when the key does not exist. The caller closes the body.
	Get(ctx context.Context, key string) (blobObject, error)
	Delete(ctx context.Context, key string) error
}

// blobObject is a stored object opened for reading.
type blobObject struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// s3BlobStore keeps objects in a single S3 bucket.
type s3BlobStore struct {
	client *s3.Client
	bucket string
}

// newS3BlobStore loads the default AWS credential chain for region.
func newS3BlobStore(ctx context.Context, bucket, region string) (*s3BlobStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &s3BlobStore{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (s *s3BlobStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *s3BlobStore) Get(ctx context.Context, key string) (blobObject, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return blobObject{}, fmt.Errorf("object %s: %w", key, errNotFound)
		}
		return blobObject{}, fmt.Errorf("get %s: %w", key, err)
	}
	return blobObject{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

func (s *s3BlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// objectKey builds a unique key like "progress-photos/<user>/<uuid>.jpg".
// The extension comes from the content type, falling back to the upload's
// file name.
func objectKey(prefix, userID, filename, contentType string) string {
	ext := ""
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = strings.ToLower(path.Ext(filename))
		}
	}
	return fmt.Sprintf("%s/%s/%s%s", prefix, userID, uuid.NewString(), ext)
}
