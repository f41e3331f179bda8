package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MediaStore uploads wardrobe images and hands back durable URLs.
type MediaStore interface {
	Upload(ctx context.Context, data []byte, mimeType string) (string, error)
}

type s3Store struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	pathStyle bool
}

// NewS3 creates a MediaStore backed by an S3 bucket, honoring env
// configuration for MinIO-style endpoints (AWS_ENDPOINT_URL_S3,
// AWS_S3_FORCE_PATH_STYLE). The bucket must allow public reads: stored
// records reference object URLs for years, and presigned URLs cannot
// outlive the SigV4 seven-day cap.
func NewS3(ctx context.Context, bucket string) (MediaStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	endpoint := os.Getenv("AWS_ENDPOINT_URL_S3")
	pathStyle := strings.EqualFold(os.Getenv("AWS_S3_FORCE_PATH_STYLE"), "true")

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if pathStyle {
			o.UsePathStyle = true
		}
	})

	return &s3Store{
		client:    client,
		bucket:    bucket,
		region:    cfg.Region,
		endpoint:  endpoint,
		pathStyle: pathStyle,
	}, nil
}

// Upload stores the image under a random filename preserving the extension
// implied by its MIME type and returns the canonical object URL.
func (s *s3Store) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	key := uuid.NewString() + extensionFor(mimeType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	return s.objectURL(key), nil
}

// objectURL renders the durable public URL for a stored object: path-style
// against a custom endpoint, virtual-hosted against AWS proper.
func (s *s3Store) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	if s.pathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", s.region, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}
