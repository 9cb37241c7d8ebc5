// Package objectstore implements the ObjectStoreGateway: list/upload/head
// operations against an S3-compatible endpoint, grounded on the MinIO
// client usage in crawler/internal/archive/archiver.go.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mbari-org/dettrackd/internal/config"
	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/retry"
)

// Gateway wraps a MinIO client scoped to one root bucket.
type Gateway struct {
	client *miniogo.Client
	bucket string
	log    logger.Interface
}

// New creates a Gateway from the minio section of Config. Unlike the
// teacher's Archiver, there is no "disabled" mode here: every dettrackd
// component depends on the object store, so a client construction failure
// is a fatal startup error per §7.
func New(cfg config.MinioConfig, log logger.Interface) (*Gateway, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: new client: %w", err)
	}
	return &Gateway{client: client, bucket: cfg.RootBucket, log: log}, nil
}

// VerifyReachable performs a bucket-existence check, used as the fatal
// startup probe described in §7 ("cannot reach object store for the
// reachability probe").
func (g *Gateway) VerifyReachable(ctx context.Context) error {
	exists, err := g.client.BucketExists(ctx, g.bucket)
	if err != nil {
		return fmt.Errorf("objectstore: bucket check: %w", err)
	}
	if !exists {
		return fmt.Errorf("objectstore: bucket %q does not exist", g.bucket)
	}
	return nil
}

// List enumerates object keys under prefix (non-recursive-safe: MinIO
// returns all matching keys regardless of depth since dettrackd's layout
// has no nested "directories" worth excluding).
func (g *Gateway) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range g.client.ListObjects(ctx, g.bucket, miniogo.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("objectstore: list %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Head reports whether key exists, used by ModelSyncMonitor to skip
// re-uploading unchanged model files. Retried with backoff since a flaky
// endpoint should not make ModelSyncMonitor re-upload an already-present
// model.
func (g *Gateway) Head(ctx context.Context, key string) (bool, error) {
	var found bool
	err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		_, statErr := g.client.StatObject(ctx, g.bucket, key, miniogo.StatObjectOptions{})
		if statErr != nil {
			errResp := miniogo.ToErrorResponse(statErr)
			if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
				found = false
				return nil
			}
			return statErr
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("objectstore: head %s: %w", key, err)
	}
	return found, nil
}

// Upload streams r (size bytes, or -1 if unknown) to key.
func (g *Gateway) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := g.client.PutObject(ctx, g.bucket, key, r, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("objectstore: upload %s: %w", key, err)
	}
	return nil
}

// URI builds the "s3://bucket/key" form used in result metadata and model
// catalog entries.
func (g *Gateway) URI(key string) string {
	return fmt.Sprintf("s3://%s/%s", g.bucket, key)
}

// Basename returns the final path element of a key, used to build
// ModelCatalog display names.
func Basename(key string) string {
	return path.Base(key)
}

// HasExtension reports whether key ends in one of the given extensions
// (each including its leading dot, e.g. ".pt").
func HasExtension(key string, exts ...string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(key, ext) {
			return true
		}
	}
	return false
}
