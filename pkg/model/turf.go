package model

import "time"

const MaxTurfImages = 3

type Turf struct {
	ID          string    `json:"id" db:"id" bson:"_id"`
	Name        string    `json:"name" db:"name" bson:"name"`
	Location    string    `json:"location" db:"location" bson:"location"`
	OwnerID     string    `json:"owner_id" db:"owner_id" bson:"owner_id"`
	Price       float64   `json:"price" db:"price" bson:"price"`
	IsAvailable bool      `json:"is_available" db:"is_available" bson:"is_available"`
	ImageURLs   []string  `json:"image_urls" db:"-" bson:"image_urls"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

type RegisterTurfRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	Location    string   `json:"location" validate:"required,min=2,max=255"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	IsAvailable *bool    `json:"is_available,omitempty"`
	ImageURLs   []string `json:"image_urls" validate:"max=3,dive,required,http_url"`
}
