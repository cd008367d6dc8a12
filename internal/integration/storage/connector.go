// Package storage persists original report files in an S3-compatible object
// store and derives short-lived signed download URLs from stored references.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/config"
)

// Connector uploads report files and signs download URLs. Issued signed
// URLs are cached for most of their validity window so repeated queries
// against the same documents don't re-sign on every request.
type Connector struct {
	config   config.StorageConfig
	client   *minio.Client
	urlCache *cache.Cache
	logger   *zap.Logger
}

func NewConnector(
	cfg config.StorageConfig,
	transport http.RoundTripper,
	logger *zap.Logger,
) (*Connector, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:    cfg.UseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	// Cached URLs must expire before the signature itself does.
	cacheTTL := cfg.SignedURLTTL / 2

	return &Connector{
		config:   cfg,
		client:   client,
		urlCache: cache.New(cacheTTL, 2*cacheTTL),
		logger:   logger,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (c *Connector) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}

	if exists {
		return nil
	}

	if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", c.config.Bucket, err)
	}

	c.logger.Info("storage bucket created", zap.String("bucket", c.config.Bucket))

	return nil
}

// Store uploads the file under a timestamp-prefixed object name (overwrites
// by name are allowed) and returns the unsigned storage reference.
func (c *Connector) Store(ctx context.Context, r io.Reader, size int64, title string, uploadedAt time.Time) (string, error) {
	objectName := objectNameFor(title, uploadedAt)

	_, err := c.client.PutObject(ctx, c.config.Bucket, objectName, r, size, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", objectName, err)
	}

	ref := makeReference(c.scheme(), c.config.Endpoint, c.config.Bucket, objectName)

	ctxzap.Info(ctx, "report file stored",
		zap.String("object", objectName),
		zap.Int64("size", size),
	)

	return ref, nil
}

// SignedURL derives a read-only, time-limited download URL from an unsigned
// storage reference. Signing failures degrade to the unsigned reference;
// the caller never sees an error.
func (c *Connector) SignedURL(ctx context.Context, ref string) string {
	if ref == "" {
		return ref
	}

	if cached, ok := c.urlCache.Get(ref); ok {
		return cached.(string)
	}

	bucket, object, err := parseReference(ref)
	if err != nil {
		ctxzap.Warn(ctx, "could not parse storage reference, returning unsigned URL",
			zap.String("reference", ref),
			zap.Error(err),
		)
		return ref
	}

	signed, err := c.client.PresignedGetObject(ctx, bucket, object, c.config.SignedURLTTL, nil)
	if err != nil {
		ctxzap.Warn(ctx, "could not sign storage URL, returning unsigned URL",
			zap.String("reference", ref),
			zap.Error(err),
		)
		return ref
	}

	result := signed.String()
	c.urlCache.SetDefault(ref, result)

	return result
}

func (c *Connector) scheme() string {
	if c.config.UseSSL {
		return "https"
	}
	return "http"
}

// objectNameFor prefixes the title with the upload timestamp so re-uploads
// of the same title never collide in the bucket.
func objectNameFor(title string, uploadedAt time.Time) string {
	return uploadedAt.Format("20060102_150405") + "_" + title
}

// makeReference builds the unsigned reference URL. Object names may contain
// spaces and non-ASCII characters; url.URL takes care of percent-encoding.
func makeReference(scheme, endpoint, bucket, objectName string) string {
	u := url.URL{
		Scheme: scheme,
		Host:   endpoint,
		Path:   "/" + bucket + "/" + objectName,
	}
	return u.String()
}

// parseReference splits an unsigned reference into bucket and decoded object
// path. The split happens on the still-encoded path so that encoded slashes
// inside the object name survive; the object path is percent-decoded
// afterwards because the signer re-encodes it when assembling the final URL.
func parseReference(ref string) (bucket, object string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("parse reference: %w", err)
	}

	escaped := strings.TrimPrefix(u.EscapedPath(), "/")
	parts := strings.SplitN(escaped, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("reference %q has no bucket/object path", ref)
	}

	object, err = url.PathUnescape(parts[1])
	if err != nil {
		return "", "", fmt.Errorf("decode object path: %w", err)
	}

	return parts[0], object, nil
}
