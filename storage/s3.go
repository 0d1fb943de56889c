package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Storage implements Storage interface for AWS S3
type S3Storage struct {
	client *s3.Client
	bucket string
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(cfg StorageConfig) (*S3Storage, error) {
	ctx := context.Background()

	var awsCfg aws.Config
	var err error

	// Load AWS config
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		// Use explicit credentials
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.S3Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKey,
				cfg.AWSSecretKey,
				"",
			)),
		)
	} else {
		// Use default credentials (from environment, IAM role, etc.)
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.S3Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
	}, nil
}

// Upload stores a vault file in S3
func (s *S3Storage) Upload(ctx context.Context, owner string, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	if !ValidOwner(owner) {
		return "", fmt.Errorf("%w: invalid owner %q", ErrUnsafePath, owner)
	}
	return s.Put(ctx, VaultPath(owner, fileID, filename), data, getContentType(filename))
}

// Put stores data under key in S3
func (s *S3Storage) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	cleaned, ok := cleanKey(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, key)
	}
	key = cleaned
	if contentType == "" {
		contentType = getContentType(key)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

// Download retrieves a file from S3
func (s *S3Storage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})

	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	return result.Body, nil
}

// OpenOwned opens ref when its cleaned key lies under owner/.
func (s *S3Storage) OpenOwned(ctx context.Context, owner, ref string) (io.ReadCloser, error) {
	key, err := OwnedKey(owner, ref)
	if err != nil {
		return nil, err
	}
	return s.Download(ctx, key)
}

// Delete removes a file from S3
func (s *S3Storage) Delete(ctx context.Context, storagePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})

	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// OwnedKey cleans an object key and checks it sits under owner/.
func OwnedKey(owner, ref string) (string, error) {
	if !ValidOwner(owner) {
		return "", fmt.Errorf("%w: invalid owner %q", ErrUnsafePath, owner)
	}
	key, ok := cleanKey(ref)
	if !ok || !strings.HasPrefix(key, owner+"/") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, ref)
	}
	return key, nil
}

// cleanKey normalizes a slash-separated key; keys that climb above the
// bucket root or are absolute are rejected.
func cleanKey(ref string) (string, bool) {
	ref = strings.ReplaceAll(ref, "\\", "/")
	if ref == "" || strings.HasPrefix(ref, "/") || strings.ContainsRune(ref, 0) {
		return "", false
	}
	key := path.Clean(ref)
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", false
	}
	return key, true
}

// getContentType determines content type from filename
func getContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
