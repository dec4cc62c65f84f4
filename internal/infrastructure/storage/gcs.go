package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

type GCS struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCS(client *gcs.Client, bucket, prefix string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: prefix}
}

func (g *GCS) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, g.client, g.bucket, ObjectKey(g.prefix, name), contentType, r)
}
