package domain

import "time"

// Client represents a registered OAuth client application.
type Client struct {
	ID        string    `bson:"client_id" json:"client_id"`
	Name      string    `bson:"client_name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
