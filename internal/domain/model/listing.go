// Package model holds catalogue types shown on marketplace pages.
package model

import "fmt"

// ListingKind names a catalogue collection exposed by the API.
type ListingKind string

const (
	ListingCourses  ListingKind = "courses"
	ListingTeachers ListingKind = "teachers"
	ListingServices ListingKind = "services"
)

// Valid reports whether k is a known collection.
func (k ListingKind) Valid() bool {
	switch k {
	case ListingCourses, ListingTeachers, ListingServices:
		return true
	default:
		return false
	}
}

// ParseListingKind validates a collection name.
func ParseListingKind(s string) (ListingKind, error) {
	k := ListingKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown listing kind %q", s)
	}
	return k, nil
}

// Listing is one catalogue entry. The API's item shapes differ per collection, so the
// common fields are extracted and the original object is kept in Raw.
type Listing struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Price       string         `json:"price,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}
