package domain

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b GeoCoordinate) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SortByDistance returns a copy of places ordered by ascending distance from
// origin. Places at equal distance keep their relative order. The input slice
// is not modified.
func SortByDistance(places []Place, origin GeoCoordinate) []Place {
	if len(places) < 2 {
		return append([]Place(nil), places...)
	}

	type ranked struct {
		place Place
		km    float64
	}
	ranks := make([]ranked, len(places))
	for i, p := range places {
		ranks[i] = ranked{place: p, km: Distance(origin, p.Coordinate())}
	}
	sort.SliceStable(ranks, func(a, b int) bool {
		return ranks[a].km < ranks[b].km
	})

	out := make([]Place, len(ranks))
	for i, r := range ranks {
		out[i] = r.place
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
