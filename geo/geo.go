// Package geo implements the proximity maths behind "issues near me":
// a cheap bounding-box pre-filter followed by an exact haversine check.
package geo

import (
	"math"
	"sort"
)

const (
	EarthRadiusKm = 6371.0
	KmPerDegree   = 111.0

	// below this cos(lat) the longitude window is meaningless (poles)
	minCosLat = 1e-9
)

type Point struct {
	Lat float64
	Lng float64
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// LngRange is an inclusive longitude interval.
type LngRange struct {
	Min float64
	Max float64
}

// Box is a latitude/longitude window around a center. When AllLongitudes is
// set only the latitude window applies.
type Box struct {
	MinLat        float64
	MaxLat        float64
	LngRanges     []LngRange
	AllLongitudes bool
}

// BoundingBox returns the pre-filter window for radiusKm around center.
// When the circle reaches a pole the longitude window is dropped and the
// exact distance check does the work.
func BoundingBox(center Point, radiusKm float64) Box {
	latDelta := radiusKm / KmPerDegree
	box := Box{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
	}

	// a circle reaching a pole spans every longitude
	if math.Abs(center.Lat)+latDelta >= 90 {
		box.AllLongitudes = true
		return box
	}

	cosLat := math.Cos(toRadians(center.Lat))
	if cosLat < minCosLat {
		box.AllLongitudes = true
		return box
	}

	lngDelta := radiusKm / (KmPerDegree * cosLat)
	if lngDelta >= 180 {
		box.AllLongitudes = true
		return box
	}

	minLng := center.Lng - lngDelta
	maxLng := center.Lng + lngDelta

	switch {
	case minLng < -180:
		box.LngRanges = []LngRange{{Min: minLng + 360, Max: 180}, {Min: -180, Max: maxLng}}
	case maxLng > 180:
		box.LngRanges = []LngRange{{Min: minLng, Max: 180}, {Min: -180, Max: maxLng - 360}}
	default:
		box.LngRanges = []LngRange{{Min: minLng, Max: maxLng}}
	}

	return box
}

// Contains reports whether p falls inside the box.
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.AllLongitudes {
		return true
	}
	for _, r := range b.LngRanges {
		if p.Lng >= r.Min && p.Lng <= r.Max {
			return true
		}
	}
	return false
}

// Ranked pairs an item with its distance from the query center.
type Ranked[T any] struct {
	Item     T
	Distance float64
}

// WithinRadius keeps the items whose distance to center is at most radiusKm
// and orders them nearest first. Ties keep their input order.
func WithinRadius[T any](items []T, center Point, radiusKm float64, locate func(T) Point) []Ranked[T] {
	out := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		d := Distance(center, locate(item))
		if d <= radiusKm {
			out = append(out, Ranked[T]{Item: item, Distance: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})

	return out
}
