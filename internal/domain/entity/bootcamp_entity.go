package entity

import "time"

const DefaultPhoto = "no-photo.jpg"

// Location is a geocoded GeoJSON point plus the address parts the geocoder
// resolved it from.
type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"` // [longitude, latitude]
	FormattedAddress string    `json:"formattedAddress,omitempty"`
	Street           string    `json:"street,omitempty"`
	City             string    `json:"city,omitempty"`
	State            string    `json:"state,omitempty"`
	Zipcode          string    `json:"zipcode,omitempty"`
	Country          string    `json:"country,omitempty"`
}

// NewPoint builds a GeoJSON point from latitude and longitude.
func NewPoint(lat, lng float64) Location {
	return Location{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

// Bootcamp is the top-level listed entity. AverageCost is derived from its
// courses and is nil while it has none.
type Bootcamp struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Location      *Location `json:"location,omitempty"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	Photo         string    `json:"photo"`
	AverageCost   *float64  `json:"averageCost"`
	UserID        string    `json:"user"`
	CreatedAt     time.Time `json:"createdAt"`
}
