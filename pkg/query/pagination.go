package query

import "context"

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next     *PageRef `json:"next,omitempty"`
	Previous *PageRef `json:"previous,omitempty"`
}

// Result is the list envelope returned by every paginated endpoint.
type Result struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       []Document `json:"data"`
}

// Paginate computes the descriptor for a 1-indexed page over total records.
func Paginate(page, limit int, total int64) Pagination {
	end := int64(page) * int64(limit)

	var p Pagination
	if end < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Previous = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

// Store is the data-fetch side a Query is executed against.
type Store interface {
	Count(ctx context.Context, filter map[string]any) (int64, error)
	Find(ctx context.Context, q Query) ([]Document, error)
}

// Execute counts the matching records, fetches the requested window and
// wraps both in a Result.
func Execute(ctx context.Context, store Store, q Query) (*Result, error) {
	total, err := store.Count(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	docs, err := store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	if len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return &Result{
		Success:    true,
		Count:      len(docs),
		Pagination: Paginate(q.Page, q.Limit, total),
		Data:       docs,
	}, nil
}
