package archive

import (
	"context"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// GCSArchiver uploads payloads to a Cloud Storage bucket.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ sinks.Archiver = (*GCSArchiver)(nil)

// NewGCSArchiver creates a storage client. An empty credentialsFile falls back to
// Application Default Credentials.
func NewGCSArchiver(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSArchiver, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket, prefix: prefix}, nil
}

// Archive uploads data as bucket/prefix/name and returns its gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, name string, data []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	objectName := path.Join(a.prefix, name)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gs://%s/%s: %w", a.bucket, objectName, err)
	}
	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload gs://%s/%s: %w", a.bucket, objectName, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// Close releases the storage client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}
