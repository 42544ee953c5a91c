package domain

import "time"

// Gift is a registry item guests can buy for the couple.
type Gift struct {
	ID          int64     `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Category    string    `json:"category" bson:"category"`
	Price       int64     `json:"price" bson:"price"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	LinkURL     string    `json:"link_url" bson:"link_url"`
	IsPurchased bool      `json:"is_purchased" bson:"is_purchased"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
