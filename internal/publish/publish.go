// Package publish uploads generated reports to S3-compatible object storage.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"repodoctor/internal/config"
)

// Publisher stores a document and returns where it can be found.
type Publisher interface {
	Publish(ctx context.Context, name string, body []byte, contentType string) (string, error)
}

// objectAPI is the subset of *minio.Client used here.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	EndpointURL() *url.URL
}

// MinioPublisher uploads to a MinIO or S3 bucket.
type MinioPublisher struct {
	client objectAPI
	bucket string
	prefix string
	repo   string
	log    *zap.Logger
	now    func() time.Time

	bucketReady bool
}

// NewMinio builds a publisher for cfg. repo names the analyzed repository
// and becomes part of every object key.
func NewMinio(cfg config.PublishConfig, repo string, log *zap.Logger) (*MinioPublisher, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("publish endpoint and bucket must be configured")
	}
	if log == nil {
		log = zap.NewNop()
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return newPublisher(cli, cfg, repo, log), nil
}

func newPublisher(client objectAPI, cfg config.PublishConfig, repo string, log *zap.Logger) *MinioPublisher {
	return &MinioPublisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		repo:   filepath.Base(repo),
		log:    log,
		now:    time.Now,
	}
}

// ObjectKey builds <prefix>/<repo>/<timestamp>-<file>.
func ObjectKey(prefix, repo string, at time.Time, file string) string {
	name := at.UTC().Format("20060102T150405Z") + "-" + path.Base(filepath.ToSlash(file))
	return path.Join(prefix, repo, name)
}

// ContentType guesses the MIME type of a report file.
func ContentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func (p *MinioPublisher) ensureBucket(ctx context.Context) error {
	if p.bucketReady {
		return nil
	}
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
		}
		p.log.Info("Created bucket", zap.String("bucket", p.bucket))
	}
	p.bucketReady = true
	return nil
}

// Publish implements Publisher.
func (p *MinioPublisher) Publish(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = ContentType(name)
	}

	key := ObjectKey(p.prefix, p.repo, p.now(), name)
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	endpoint := p.client.EndpointURL()
	u := url.URL{Scheme: endpoint.Scheme, Host: endpoint.Host, Path: "/" + path.Join(p.bucket, key)}
	p.log.Info("Report published", zap.String("bucket", p.bucket), zap.String("key", key), zap.Int("bytes", len(body)))
	return u.String(), nil
}
