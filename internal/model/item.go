package model

import "time"

// Item is a catalog entry for a supply type tracked by quantity.
type Item struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category,omitempty"`
	Unit      string     `json:"unit"`
	PhotoMime string     `json:"photo_mime,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
