package notes

import "time"

// Note is one free-text annotation attached to a planet.
type Note struct {
	ID        string    `json:"id"`
	Planet    string    `json:"planet"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
