package domain

import "context"

// Locator resolves the observer's current position. Implementations must
// return when ctx is cancelled.
type Locator interface {
	CurrentPosition(ctx context.Context) (GeoCoordinate, error)
}
