// Package storage uploads narration audio to S3-compatible object
// storage and hands back public URLs.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader pushes a local file to shared storage and returns its public
// URL. A nil Uploader in callers means uploads are disabled.
type Uploader interface {
	Upload(ctx context.Context, localPath, contentType string) (string, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	KeyPrefix string
	// BaseURL overrides the default virtual-hosted URL, for CDN fronts.
	BaseURL string
}

type S3Uploader struct {
	client *s3.Client
	cfg    S3Config
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &S3Uploader{client: s3.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// Upload stores localPath under a unique key and returns the public URL.
func (u *S3Uploader) Upload(ctx context.Context, localPath, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	key := u.objectKey(localPath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return u.publicURL(key), nil
}

func (u *S3Uploader) objectKey(localPath string) string {
	key := uuid.NewString() + filepath.Ext(localPath)
	if u.cfg.KeyPrefix != "" {
		key = strings.TrimSuffix(u.cfg.KeyPrefix, "/") + "/" + key
	}
	return key
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.BaseURL != "" {
		return strings.TrimSuffix(u.cfg.BaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}
