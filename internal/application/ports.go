package application

import (
	"context"
	"io"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

// Geocoder resolves a free-form address or zipcode to a point.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (entity.Location, error)
}

// PhotoStore persists an uploaded bootcamp photo and returns its public URL.
type PhotoStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// SearchIndex keeps a full-text copy of bootcamps. Implementations that are
// not configured accept writes and return no hits.
type SearchIndex interface {
	Index(ctx context.Context, b *entity.Bootcamp) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// StaleSet remembers bootcamps whose average cost could not be written.
type StaleSet interface {
	Add(ctx context.Context, ids ...string) error
	Pop(ctx context.Context, n int64) ([]string, error)
}
