package model

import "time"

// Display represents a single SmartTV endpoint in a hotel.
type Display struct {
	ID                int       `db:"id"            json:"id"`
	HotelID           int       `db:"hotel_id"      json:"hotel_id"`
	AreaID            *int      `db:"area_id"       json:"area_id,omitempty"`
	DeviceID          *string   `db:"device_id"     json:"device_id"`
	Name              string    `db:"name"          json:"name"`
	Location          *string   `db:"location"      json:"location,omitempty"`
	FallbackContentID *int      `db:"fallback_content_id" json:"fallback_content_id,omitempty"`
	Paired            bool      `db:"paired"        json:"paired"`
	CreatedAt         time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"    json:"updated_at"`
}

// Area is a physical zone inside a hotel (lobby, bar, conference floor).
type Area struct {
	ID        int       `db:"id"         json:"id"`
	HotelID   int       `db:"hotel_id"   json:"hotel_id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Hotel struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
