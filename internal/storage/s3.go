// Package storage uploads local files to S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"athena-demo/internal/awsclient"
	"athena-demo/internal/config"
	"athena-demo/internal/domain"
)

// Compile-time check: S3Store implements domain.ObjectStore.
var _ domain.ObjectStore = (*S3Store)(nil)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects through the AWS SDK v2.
type S3Store struct {
	client S3API
}

// NewS3Store wraps an existing S3 client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// NewS3StoreFromConfig builds an S3 client from awsCfg. A custom endpoint
// switches to path-style addressing for S3-compatible stores.
func NewS3StoreFromConfig(awsCfg aws.Config, cfg *config.Config) *S3Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(awsclient.EndpointURL(cfg.Endpoint))
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client)
}

// PutObject writes body to loc.
func (s *S3Store) PutObject(ctx context.Context, loc domain.ObjectLocation, body io.Reader, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put object %s: %w", loc.URI(), err)
	}
	return nil
}

// Uploader pushes local files to object storage. Failures are returned
// unretried.
type Uploader struct {
	store  domain.ObjectStore
	logger *slog.Logger
}

// NewUploader creates an Uploader.
func NewUploader(store domain.ObjectStore, logger *slog.Logger) *Uploader {
	return &Uploader{store: store, logger: logger}
}

// Upload copies the file at localPath to target.
func (u *Uploader) Upload(ctx context.Context, localPath string, target domain.ObjectLocation) error {
	if target.Bucket == "" || target.Key == "" {
		return domain.ErrValidation("upload target needs both bucket and key, got %q", target.URI())
	}
	f, err := os.Open(localPath) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return domain.ErrValidation("%s is a directory", localPath)
	}

	u.logger.Info("uploading file", "path", localPath, "target", target.URI(), "bytes", info.Size())
	if err := u.store.PutObject(ctx, target, f, contentTypeFor(localPath)); err != nil {
		return fmt.Errorf("upload %s: %w", localPath, err)
	}
	u.logger.Info("upload complete", "target", target.URI())
	return nil
}

func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// ParseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func ParseS3Path(s3Path string) (domain.ObjectLocation, error) {
	u, err := url.Parse(s3Path)
	if err != nil {
		return domain.ObjectLocation{}, fmt.Errorf("parse S3 path %q: %w", s3Path, err)
	}
	if u.Scheme != "s3" {
		return domain.ObjectLocation{}, fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, s3Path)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return domain.ObjectLocation{}, fmt.Errorf("empty key in S3 path %q", s3Path)
	}
	return domain.ObjectLocation{Bucket: u.Host, Key: key}, nil
}
