// Package storage puts uploaded bootcamp photos into an object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/config"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// PhotoStore stores one object under name and returns where it can be read.
type PhotoStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// ObjectKey joins the configured prefix and a file name.
func ObjectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (PhotoStore, error) {
	switch cfg.StorageDriver {
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required for the gcs storage driver")
		}
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		logger.WithField("bucket", cfg.GCSBucket).Info("using gcs photo storage")
		return NewGCS(client, cfg.GCSBucket, cfg.FileUploadPrefix), nil
	case "s3":
		s, err := NewS3(ctx, S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.FileUploadPrefix,
		})
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"bucket": cfg.S3Bucket, "region": cfg.S3Region}).Info("using s3 photo storage")
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
