// Package storage deletes stored images once the records that referenced them
// are gone.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pkordes/wayfarer/internal/config"
)

// maxKeysPerDelete is the DeleteObjects batch ceiling.
const maxKeysPerDelete = 1000

// ErrPartialDelete is returned when S3 accepted a batch but refused some keys.
var ErrPartialDelete = errors.New("storage: some objects were not deleted")

// S3API is the subset of the S3 client the cleaner uses.
type S3API interface {
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Cleaner deletes images from one bucket. It satisfies service.ImageCleaner.
type S3Cleaner struct {
	client  S3API
	bucket  string
	baseURL string
	logger  *slog.Logger
}

// NewS3Cleaner builds a cleaner from configuration. Static credentials are
// used when both keys are set; otherwise the default AWS chain applies.
func NewS3Cleaner(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*S3Cleaner, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewS3Cleaner: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3CleanerWithClient(client, cfg.Bucket, cfg.PublicBaseURL, logger), nil
}

// NewS3CleanerWithClient builds a cleaner around an existing client.
// baseURL is the public prefix image URLs are served under.
func NewS3CleanerWithClient(client S3API, bucket, baseURL string, logger *slog.Logger) *S3Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Cleaner{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		logger:  logger,
	}
}

// DeleteImages removes the objects behind urls. URLs outside the bucket's
// public prefix are skipped: they point at images hosted elsewhere.
func (c *S3Cleaner) DeleteImages(ctx context.Context, urls []string) error {
	var objects []types.ObjectIdentifier
	for _, u := range urls {
		key, ok := c.KeyFor(u)
		if !ok {
			c.logger.DebugContext(ctx, "skipping foreign image url", "url", u)
			continue
		}
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	var failed int
	for i := 0; i < len(objects); i += maxKeysPerDelete {
		end := min(i+maxKeysPerDelete, len(objects))
		out, err := c.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.bucket),
			Delete: &types.Delete{Objects: objects[i:end], Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("storage.S3Cleaner.DeleteImages: %w", err)
		}
		for _, e := range out.Errors {
			failed++
			c.logger.WarnContext(ctx, "object not deleted",
				"key", aws.ToString(e.Key), "code", aws.ToString(e.Code), "message", aws.ToString(e.Message))
		}
	}
	if failed > 0 {
		return fmt.Errorf("storage.S3Cleaner.DeleteImages: %w (%d of %d)", ErrPartialDelete, failed, len(objects))
	}
	return nil
}

// KeyFor maps a public image URL to its object key.
func (c *S3Cleaner) KeyFor(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, c.baseURL)
	if !ok {
		return "", false
	}
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
