// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package places

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Scored is a restaurant together with its distance from the search origin.
type Scored struct {
	Restaurant
	DistanceKm float64 `json:"distance_km"`
}

// Env is what a where clause can see.
type Env struct {
	Name       string  `expr:"name"`
	Rating     float64 `expr:"rating"`
	PriceLevel int     `expr:"price_level"`
	DistanceKm float64 `expr:"distance_km"`
}

// Filter narrows restaurants by name, distance and an optional expression.
// The zero Filter keeps everything.
type Filter struct {
	Query         string
	MaxDistanceKm float64
	where         *vm.Program
	whereSource   string
}

// NewFilter compiles where (may be empty). maxDistanceKm <= 0 disables the
// distance check.
func NewFilter(query string, maxDistanceKm float64, where string) (Filter, error) {
	f := Filter{
		Query:         strings.TrimSpace(query),
		MaxDistanceKm: maxDistanceKm,
	}
	where = strings.TrimSpace(where)
	if where == "" {
		return f, nil
	}

	program, err := expr.Compile(where, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return Filter{}, fmt.Errorf("invalid where expression %q: %w", where, err)
	}
	f.where = program
	f.whereSource = where
	return f, nil
}

// Where returns the source of the compiled expression.
func (f Filter) Where() string { return f.whereSource }

// Apply returns the matching restaurants sorted by distance from origin.
// Ties keep their input order.
func (f Filter) Apply(origin Point, in []Restaurant) ([]Scored, error) {
	query := strings.ToLower(f.Query)
	out := make([]Scored, 0, len(in))

	for _, r := range in {
		d := DistanceKm(origin, Point{Lat: r.Latitude, Lng: r.Longitude})
		if f.MaxDistanceKm > 0 && d > f.MaxDistanceKm {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(r.Name), query) {
			continue
		}
		if f.where != nil {
			ok, err := expr.Run(f.where, Env{
				Name:       r.Name,
				Rating:     r.Rating,
				PriceLevel: r.PriceLevel,
				DistanceKm: d,
			})
			if err != nil {
				return nil, fmt.Errorf("evaluate where for %s: %w", r.ID, err)
			}
			if !ok.(bool) {
				continue
			}
		}
		out = append(out, Scored{Restaurant: r, DistanceKm: d})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}
