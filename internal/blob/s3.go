package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"filedepot/internal/depot"
)

// S3Store keeps blobs as objects in an S3 bucket. Logical paths map to
// object keys under an optional prefix; directories are represented by
// zero-byte marker objects whose keys end in "/".
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Store creates an S3 blob store using the default AWS credential chain.
func NewS3Store(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.TrimSuffix(prefix, "/"),
	}, nil
}

// key maps a logical path onto an object key, keeping the trailing slash of
// directory paths so markers and files stay distinct.
func (s *S3Store) key(logical string) string {
	k := strings.TrimPrefix(logical, depot.Separator)
	if s.prefix == "" {
		return k
	}
	return s.prefix + "/" + k
}

func (s *S3Store) MakeDir(ctx context.Context, dir string) error {
	key := s.key(dir)
	if key == "" {
		return nil // bucket root needs no marker
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("creating directory marker: %w", err)
	}
	return nil
}

func (s *S3Store) Write(ctx context.Context, path string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("uploading object: %w", err)
	}
	return nil
}

func (s *S3Store) Read(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("getting object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object body: %w", err)
	}
	return data, nil
}

// Move is a server-side copy followed by a delete of the source object.
func (s *S3Store) Move(ctx context.Context, oldPath, newPath string) error {
	srcKey := s.key(oldPath)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.key(newPath)),
		CopySource: aws.String(s.bucket + "/" + srcKey),
	})
	if err != nil {
		return fmt.Errorf("copying object: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(srcKey),
	})
	if err != nil {
		return fmt.Errorf("deleting source object: %w", err)
	}
	return nil
}

// Remove deletes the object. S3 deletes are idempotent, so absence is
// tolerated without a pre-check.
func (s *S3Store) Remove(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Validate verifies the bucket is reachable with the configured credentials.
func (s *S3Store) Validate(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

// Compile-time check that S3Store implements depot.BlobStore interface
var _ depot.BlobStore = (*S3Store)(nil)
