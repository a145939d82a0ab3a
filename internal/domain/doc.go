// Package domain models the places a user can pick and the rules for ordering them.
//
// # Places
//
// A [Place] is an immutable value fetched from the remote places service. The
// catalog and the user's picked list hold independent copies; nothing relies on
// two collections sharing a pointer to the same place.
//
// Wire shape (an external contract with the remote service):
//
//	{"id": "p1", "title": "Forest Waterfall",
//	 "image": {"src": "forest-waterfall.jpg", "alt": "A tranquil forest ..."},
//	 "description": "...", "lat": 44.5588, "lon": -80.344}
//
// # Picked places
//
// The picked list is ordered most recent first and holds at most one place per
// ID. Helpers [Prepend], [Without] and [ContainsID] never mutate their input,
// so a snapshot taken before an optimistic update stays valid for rollback.
//
// # Distance
//
// Distances are great-circle distances on a sphere of radius [EarthRadiusKm]
// computed with the haversine formula. [SortByDistance] is stable, so places at
// the same distance keep their catalog order.
package domain
