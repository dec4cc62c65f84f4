package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bostonResponse = `{
  "info": {"statuscode": 0, "messages": []},
  "results": [{"locations": [{
    "street": "233 Bay State Rd",
    "adminArea5": "Boston",
    "adminArea3": "MA",
    "adminArea1": "US",
    "postalCode": "02215",
    "latLng": {"lat": 42.350846, "lng": -71.103833}
  }]}]
}`

func TestMapQuest_Geocode(t *testing.T) {
	var gotKey, gotLocation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoding/v1/address", r.URL.Path)
		gotKey = r.URL.Query().Get("key")
		gotLocation = r.URL.Query().Get("location")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bostonResponse))
	}))
	defer srv.Close()

	g := NewMapQuest(Config{BaseURL: srv.URL, APIKey: "k"}, nil)
	loc, err := g.Geocode(context.Background(), "233 Bay State Rd Boston MA 02215")
	require.NoError(t, err)

	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "233 Bay State Rd Boston MA 02215", gotLocation)
	assert.Equal(t, "Point", loc.Type)
	assert.InDelta(t, 42.350846, loc.Latitude(), 1e-9)
	assert.InDelta(t, -71.103833, loc.Longitude(), 1e-9)
	assert.Equal(t, "02215", loc.Zipcode)
	assert.Equal(t, "233 Bay State Rd, Boston, MA 02215, US", loc.FormattedAddress)
}

func TestMapQuest_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info":{"statuscode":0},"results":[{"locations":[]}]}`))
	}))
	defer srv.Close()

	g := NewMapQuest(Config{BaseURL: srv.URL}, nil)
	_, err := g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = g.Geocode(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMapQuest_ProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "bad" {
			_, _ = w.Write([]byte(`{"info":{"statuscode":403,"messages":["key rejected"]}}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewMapQuest(Config{BaseURL: srv.URL, APIKey: "bad"}, nil).Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key rejected")

	_, err = NewMapQuest(Config{BaseURL: srv.URL, APIKey: "ok"}, nil).Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 502")
}
