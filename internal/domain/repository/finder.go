package repository

import (
	"context"

	"github.com/oksasatya/bootcamp-directory/pkg/query"
)

// Finder runs generic list queries against one collection.
type Finder interface {
	query.Store
	// FindByID fetches a single document, resolving the given references.
	FindByID(ctx context.Context, id string, populate ...query.Populate) (query.Document, error)
}
