package publish

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repodoctor/internal/config"
)

type fakeObjects struct {
	exists      bool
	existsErr   error
	made        []string
	puts        map[string]string
	contentType string
}

func (f *fakeObjects) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeObjects) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	f.exists = true
	return nil
}

func (f *fakeObjects) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[bucket+"/"+key] = string(data)
	f.contentType = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeObjects) EndpointURL() *url.URL {
	return &url.URL{Scheme: "https", Host: "s3.example.com"}
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	assert.Equal(t, "repodoctor/myapp/20250607T080910Z-REPODOCTOR_REPORT.md",
		ObjectKey("repodoctor", "myapp", at, "/tmp/out/REPODOCTOR_REPORT.md"))
	assert.Equal(t, "myapp/20250607T080910Z-r.html", ObjectKey("", "myapp", at, "r.html"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/markdown; charset=utf-8", ContentType("a.MD"))
	assert.Equal(t, "text/html; charset=utf-8", ContentType("a.html"))
	assert.Equal(t, "application/json", ContentType("a.json"))
	assert.Equal(t, "application/octet-stream", ContentType("a"))
}

func TestPublishCreatesBucketOnce(t *testing.T) {
	fake := &fakeObjects{}
	cfg := config.PublishConfig{Bucket: "reports", Prefix: "rd"}
	p := newPublisher(fake, cfg, "/home/me/myapp", zap.NewNop())
	p.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	u, err := p.Publish(context.Background(), "REPODOCTOR_REPORT.md", []byte("# Report"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/reports/rd/myapp/20250101T000000Z-REPODOCTOR_REPORT.md", u)
	assert.Equal(t, "# Report", fake.puts["reports/rd/myapp/20250101T000000Z-REPODOCTOR_REPORT.md"])
	assert.Equal(t, "text/markdown; charset=utf-8", fake.contentType)
	assert.Equal(t, []string{"reports"}, fake.made)

	_, err = p.Publish(context.Background(), "other.html", []byte("<p>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "text/html", fake.contentType)
	assert.Len(t, fake.made, 1)
}

func TestPublishBucketCheckFails(t *testing.T) {
	fake := &fakeObjects{existsErr: errors.New("denied")}
	p := newPublisher(fake, config.PublishConfig{Bucket: "reports"}, "repo", zap.NewNop())

	_, err := p.Publish(context.Background(), "r.md", []byte("x"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
	assert.Empty(t, fake.puts)
}

func TestNewMinioRequiresEndpoint(t *testing.T) {
	_, err := NewMinio(config.PublishConfig{Bucket: "b"}, "repo", nil)
	assert.Error(t, err)

	p, err := NewMinio(config.PublishConfig{Endpoint: "localhost:9000", Bucket: "b", Prefix: "x"}, "/src/repo", nil)
	require.NoError(t, err)
	assert.Equal(t, "repo", p.repo)
}
