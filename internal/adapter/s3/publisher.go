// Package s3 publishes the generated site to an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/couchcryptid/festival-map/internal/config"
	"github.com/couchcryptid/festival-map/internal/domain"
)

// uploader is the subset of *manager.Uploader used by Publisher.
type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Publisher uploads each artifact under a key prefix.
// It implements pipeline.Loader.
type Publisher struct {
	uploader uploader
	bucket   string
	prefix   string
	logger   *slog.Logger
}

// NewPublisher builds an S3 client from the default AWS credential chain.
// A custom S3_ENDPOINT switches to path-style addressing.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("s3 publisher created", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix, "region", cfg.S3Region)
	return newPublisher(manager.NewUploader(client), cfg.S3Bucket, cfg.S3Prefix, logger), nil
}

func newPublisher(u uploader, bucket, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{uploader: u, bucket: bucket, prefix: prefix, logger: logger}
}

// Key returns the object key for an artifact path.
func (p *Publisher) Key(artifactPath string) string {
	return path.Join(p.prefix, artifactPath)
}

// Load uploads every artifact with its content type. The first failed upload
// stops the run.
func (p *Publisher) Load(ctx context.Context, art domain.Artifacts) error {
	for _, f := range art.Files() {
		key := p.Key(f.Path)
		_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(f.Body),
			ContentType: aws.String(f.ContentType),
		})
		if err != nil {
			return fmt.Errorf("upload s3://%s/%s: %w", p.bucket, key, err)
		}
		p.logger.Info("artifact uploaded", "bucket", p.bucket, "key", key, "bytes", len(f.Body))
	}
	return nil
}
