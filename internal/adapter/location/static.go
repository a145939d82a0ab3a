// Package location provides domain.Locator implementations that need no
// external service.
package location

import (
	"context"

	"github.com/couchcryptid/place-picker/internal/domain"
)

// Static always reports the same position.
type Static struct {
	pos domain.GeoCoordinate
}

// NewStatic creates a Static locator at pos.
func NewStatic(pos domain.GeoCoordinate) *Static {
	return &Static{pos: pos}
}

// CurrentPosition implements domain.Locator.
func (s *Static) CurrentPosition(ctx context.Context) (domain.GeoCoordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.GeoCoordinate{}, err
	}
	return s.pos, nil
}
