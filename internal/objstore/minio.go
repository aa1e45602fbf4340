// Package objstore wraps the S3-compatible object store behind the two
// operations the application needs: upload bytes for a public URL, and
// remove.
package objstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client talks to an S3-compatible object store.
type Client struct {
	mc       *minio.Client
	endpoint string
	useSSL   bool
}

// New connects to the object store at endpoint.
func New(endpoint, accessKey, secretKey string, useSSL bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}
	return &Client{mc: mc, endpoint: endpoint, useSSL: useSSL}, nil
}

// Upload stores data under bucket/path and returns the public URL. The
// bucket is created on first use.
func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("checking bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("creating bucket %s: %w", bucket, err)
		}
	}

	_, err = c.mc.PutObject(ctx, bucket, path, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("uploading %s/%s: %w", bucket, path, err)
	}

	return c.PublicURL(bucket, path), nil
}

// Remove deletes the given objects from a bucket. Missing objects are
// not an error.
func (c *Client) Remove(ctx context.Context, bucket string, paths []string) error {
	for _, path := range paths {
		if err := c.mc.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("removing %s/%s: %w", bucket, path, err)
		}
	}
	return nil
}

// PublicURL builds the public address of an object.
func (c *Client) PublicURL(bucket, path string) string {
	scheme := "http"
	if c.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.endpoint, bucket, path)
}
