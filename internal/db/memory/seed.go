package memory

import (
	"time"

	"Apiverse/internal/core/listings"
)

// Seed fills the store with a small directory for local development
func Seed(s *Store, now time.Time) {
	fixtures := []listings.Listing{
		{ID: "open-weather", Name: "Open Weather", Category: "weather", BaseURL: "https://api.openweather.example", UpvoteCount: 12},
		{ID: "geo-coder", Name: "GeoCoder", Category: "maps", BaseURL: "https://geo.example", UpvoteCount: 7},
		{ID: "fx-rates", Name: "FX Rates", Category: "finance", BaseURL: "https://fx.example", UpvoteCount: 7},
		{ID: "lorem-text", Name: "Lorem Text", Category: "text", BaseURL: "https://lorem.example"},
		{ID: "pet-finder", Name: "Pet Finder", Category: "animals", BaseURL: "https://pets.example", UpvoteCount: 3},
	}
	for i, l := range fixtures {
		l.Description = l.Name + " public API"
		l.CreatedAt = now.Add(time.Duration(i-len(fixtures)) * time.Hour).UTC()
		s.Put(l)
	}
}
