package model

import "time"

// Notification is a fired disposal reminder. Only the seen flag ever changes.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	ItemID    int64     `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
	Seen      bool      `json:"seen"`
}
