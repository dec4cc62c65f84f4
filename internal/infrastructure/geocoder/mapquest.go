// Package geocoder resolves free-form addresses and zipcodes to points.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

// ErrNoMatch is returned when the provider knows no location for the address.
var ErrNoMatch = errors.New("geocoder: no match for address")

const cacheTTL = 24 * time.Hour

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// MapQuest talks to the MapQuest geocoding API. Results are cached in
// Redis when a client is given.
type MapQuest struct {
	client *resty.Client
	apiKey string
	cache  redis.Cmdable
}

func NewMapQuest(cfg Config, cache redis.Cmdable) *MapQuest {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.mapquestapi.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &MapQuest{client: cli, apiKey: cfg.APIKey, cache: cache}
}

type mqResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mqLocation `json:"locations"`
	} `json:"results"`
}

type mqLocation struct {
	Street     string `json:"street"`
	City       string `json:"adminArea5"`
	State      string `json:"adminArea3"`
	Country    string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

// Geocode returns the best match for address as a GeoJSON point with its
// address parts filled in.
func (m *MapQuest) Geocode(ctx context.Context, address string) (entity.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return entity.Location{}, ErrNoMatch
	}

	key := helpers.KeyGeocode("mapquest", strings.ToLower(address))
	if m.cache != nil {
		var cached entity.Location
		if ok, err := helpers.RedisGetJSON(ctx, m.cache, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetQueryParam("key", m.apiKey).
		SetQueryParam("location", address).
		SetQueryParam("maxResults", "1").
		Get("/geocoding/v1/address")
	if err != nil {
		return entity.Location{}, fmt.Errorf("geocode request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return entity.Location{}, fmt.Errorf("geocode: http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var body mqResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return entity.Location{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if body.Info.StatusCode != 0 {
		return entity.Location{}, fmt.Errorf("geocode: provider status %d: %s", body.Info.StatusCode, strings.Join(body.Info.Messages, "; "))
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return entity.Location{}, ErrNoMatch
	}

	loc := toLocation(body.Results[0].Locations[0])
	if m.cache != nil {
		_ = helpers.RedisSetJSON(ctx, m.cache, key, loc, cacheTTL)
	}
	return loc, nil
}

func toLocation(l mqLocation) entity.Location {
	loc := entity.NewPoint(l.LatLng.Lat, l.LatLng.Lng)
	loc.Street = l.Street
	loc.City = l.City
	loc.State = l.State
	loc.Zipcode = l.PostalCode
	loc.Country = l.Country

	var parts []string
	for _, p := range []string{l.Street, l.City, strings.TrimSpace(l.State + " " + l.PostalCode), l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	loc.FormattedAddress = strings.Join(parts, ", ")
	return loc
}
