package entity

import "time"

// Review represents a user's rating of a bootcamp, 1 to 10.
type Review struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"`
	BootcampID string    `json:"bootcamp"`
	UserID     string    `json:"user"`
	CreatedAt  time.Time `json:"createdAt"`
}
