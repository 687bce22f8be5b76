// Package s3 stores phone images in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vbonduro/phonegallery/internal/photostore"
)

// objectAPI is the subset of *s3.Client the store uses.
type objectAPI interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Options configures the bucket connection. Endpoint is only needed for
// S3-compatible services such as MinIO; AccessKey and SecretKey fall back to
// the default AWS credential chain when empty.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type S3PhotoStore struct {
	client objectAPI
	bucket string
}

func NewS3PhotoStore(ctx context.Context, opts Options) (*S3PhotoStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newWithClient(client, opts.Bucket), nil
}

func newWithClient(client objectAPI, bucket string) *S3PhotoStore {
	return &S3PhotoStore{client: client, bucket: bucket}
}

func (s *S3PhotoStore) Save(ctx context.Context, dir, mimeType string, r io.Reader) (string, error) {
	key := cleanKey(path.Join(dir, fmt.Sprintf("%d%s", time.Now().UnixNano(), photostore.ExtFromMimeType(mimeType))))

	// Buffer the body so the SDK can sign and retry it.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

func (s *S3PhotoStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	key := cleanKey(storageKey)
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", fmt.Errorf("%s: %w", key, photostore.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to get %s: %w", key, err)
	}

	mimeType := aws.ToString(out.ContentType)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = photostore.MimeTypeFromExt(key)
	}
	return out.Body, mimeType, nil
}

// cleanKey collapses "..", "." and leading slashes so keys cannot escape the
// bucket root.
func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
