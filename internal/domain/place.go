package domain

import (
	"errors"
	"fmt"
)

// Image references a place's picture.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Place is a catalog entry the user may pick.
type Place struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Image       Image   `json:"image"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// GeoCoordinate is a WGS-84 latitude/longitude pair.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate returns the place's position.
func (p Place) Coordinate() GeoCoordinate {
	return GeoCoordinate{Lat: p.Lat, Lon: p.Lon}
}

// Validate reports whether the place can be stored or sorted.
func (p Place) Validate() error {
	if p.ID == "" {
		return errors.New("place id is required")
	}
	return p.Coordinate().Validate()
}

// Validate checks the coordinate lies within WGS-84 bounds.
func (c GeoCoordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("invalid coordinates: lat=%f, lon=%f", c.Lat, c.Lon)
	}
	return nil
}

// ContainsID reports whether any place in places has the given ID.
func ContainsID(places []Place, id string) bool {
	for i := range places {
		if places[i].ID == id {
			return true
		}
	}
	return false
}

// Prepend returns a new slice with p first followed by places.
func Prepend(p Place, places []Place) []Place {
	out := make([]Place, 0, len(places)+1)
	out = append(out, p)
	return append(out, places...)
}

// Without returns a new slice holding every place whose ID is not id,
// in the original order.
func Without(places []Place, id string) []Place {
	out := make([]Place, 0, len(places))
	for _, p := range places {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// IDs lists the place IDs in order.
func IDs(places []Place) []string {
	ids := make([]string, len(places))
	for i, p := range places {
		ids[i] = p.ID
	}
	return ids
}
