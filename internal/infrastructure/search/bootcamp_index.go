// Package search keeps a full-text index of bootcamps in Elasticsearch.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// BootcampIndex is a no-op when es is nil.
type BootcampIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewBootcampIndex(es *elasticsearch.Client, index string) *BootcampIndex {
	return &BootcampIndex{es: es, index: index}
}

func (x *BootcampIndex) enabled() bool {
	return x != nil && x.es != nil && x.index != ""
}

type document struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	AverageCost *float64 `json:"averageCost,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

func toDocument(b *entity.Bootcamp) document {
	d := document{
		ID:          b.ID,
		Name:        b.Name,
		Slug:        b.Slug,
		Description: b.Description,
		AverageCost: b.AverageCost,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if b.Location != nil {
		d.City = b.Location.City
		d.State = b.Location.State
	}
	return d
}

func (x *BootcampIndex) Index(ctx context.Context, b *entity.Bootcamp) error {
	if !x.enabled() {
		return nil
	}
	body, err := json.Marshal(toDocument(b))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: b.ID, Body: strings.NewReader(string(body)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", b.ID, res.Status())
	}
	return nil
}

// Delete removes the document; a missing document is not an error.
func (x *BootcampIndex) Delete(ctx context.Context, id string) error {
	if !x.enabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over name and description and returns the
// stored documents in relevance order.
func (x *BootcampIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !x.enabled() || strings.TrimSpace(q) == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "description", "city", "state"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
