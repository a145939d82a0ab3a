package mapbox

import (
	"context"
	"fmt"

	"github.com/couchcryptid/place-picker/internal/domain"
)

// Locator resolves the observer's position by geocoding a fixed address,
// for deployments without a device position.
type Locator struct {
	geocoder domain.Geocoder
	query    string
}

// NewLocator creates a Locator for the given address.
func NewLocator(geocoder domain.Geocoder, query string) *Locator {
	return &Locator{geocoder: geocoder, query: query}
}

// CurrentPosition implements domain.Locator.
func (l *Locator) CurrentPosition(ctx context.Context) (domain.GeoCoordinate, error) {
	result, err := l.geocoder.ForwardGeocode(ctx, l.query)
	if err != nil {
		return domain.GeoCoordinate{}, err
	}
	if !result.Found() {
		return domain.GeoCoordinate{}, fmt.Errorf("no geocoding match for %q", l.query)
	}
	return result.Coordinate(), nil
}
