// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package places_test

import (
	"net/url"
	"testing"

	"github.com/danielhkuo/quickly-spin/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = places.Point{Lat: 41.0082, Lng: 28.9784}

func fixtures() []places.Restaurant {
	return []places.Restaurant{
		{ID: "far", Name: "Far Away Grill", Rating: 4.9, Latitude: 41.2, Longitude: 29.1, PriceLevel: 3},
		{ID: "kebap", Name: "Adana Kebap", Rating: 4.6, Latitude: 41.01, Longitude: 28.98, PriceLevel: 1},
		{ID: "sushi", Name: "Sushi Co", Rating: 4.2, Latitude: 41.02, Longitude: 28.99, PriceLevel: 2},
	}
}

func ids(in []places.Scored) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.ID
	}
	return out
}

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 0, places.DistanceKm(origin, origin), 1e-9)

	// one degree of latitude is about 111.2 km
	d := places.DistanceKm(places.Point{Lat: 0, Lng: 0}, places.Point{Lat: 1, Lng: 0})
	assert.InDelta(t, 111.19, d, 0.05)

	// Istanbul to Ankara, roughly 350 km
	ankara := places.Point{Lat: 39.9334, Lng: 32.8597}
	assert.InDelta(t, 350, places.DistanceKm(origin, ankara), 10)
	assert.InDelta(t, places.DistanceKm(origin, ankara), places.DistanceKm(ankara, origin), 1e-9)
}

func TestFilter_ZeroKeepsAllSortedByDistance(t *testing.T) {
	out, err := places.Filter{}.Apply(origin, fixtures())
	require.NoError(t, err)
	assert.Equal(t, []string{"kebap", "sushi", "far"}, ids(out))
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].DistanceKm, out[i].DistanceKm)
	}
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name  string
		query string
		maxKm float64
		where string
		want  []string
	}{
		{"name is case insensitive", "SUSHI", 0, "", []string{"sushi"}},
		{"distance cap", "", 5, "", []string{"kebap", "sushi"}},
		{"where on rating", "", 0, "rating >= 4.5", []string{"kebap", "far"}},
		{"where on price and distance", "", 0, "price_level <= 2 && distance_km < 3", []string{"kebap", "sushi"}},
		{"where on name", "", 0, `name startsWith "Far"`, []string{"far"}},
		{"everything combined", "co", 10, "rating > 4", []string{"sushi"}},
		{"nothing matches", "pizza", 0, "", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := places.NewFilter(tc.query, tc.maxKm, tc.where)
			require.NoError(t, err)

			out, err := f.Apply(origin, fixtures())
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(out))
		})
	}
}

func TestNewFilter_RejectsBadExpressions(t *testing.T) {
	_, err := places.NewFilter("", 0, "rating >=")
	assert.Error(t, err)

	_, err = places.NewFilter("", 0, "unknown_field > 1")
	assert.Error(t, err)

	// must evaluate to a boolean
	_, err = places.NewFilter("", 0, "rating + 1")
	assert.Error(t, err)

	f, err := places.NewFilter("", 0, "  rating > 1  ")
	require.NoError(t, err)
	assert.Equal(t, "rating > 1", f.Where())
}

func TestDirectionsFor(t *testing.T) {
	r := places.Restaurant{ID: "ChIJ123", Name: "Güzel Restoran", Latitude: 41.0082, Longitude: 28.9784}
	links := places.DirectionsFor(r)

	search, err := url.Parse(links.GoogleSearch)
	require.NoError(t, err)
	assert.Equal(t, "www.google.com", search.Host)
	assert.Equal(t, "Güzel Restoran", search.Query().Get("query"))
	assert.Equal(t, "ChIJ123", search.Query().Get("query_place_id"))

	dir, err := url.Parse(links.GoogleDirections)
	require.NoError(t, err)
	assert.Equal(t, "41.0082,28.9784", dir.Query().Get("destination"))

	apple, err := url.Parse(links.AppleMaps)
	require.NoError(t, err)
	assert.Equal(t, "41.0082,28.9784", apple.Query().Get("daddr"))

	yandex, err := url.Parse(links.YandexMaps)
	require.NoError(t, err)
	assert.Equal(t, "~41.0082,28.9784", yandex.Query().Get("rtext"))
}

func TestPriceLabelAndRadius(t *testing.T) {
	assert.Equal(t, "$", places.PriceLabel(0, ""))
	assert.Equal(t, "₺₺₺", places.PriceLabel(3, "₺"))
	assert.Equal(t, 5000, places.RadiusMeters(5))
	assert.Equal(t, 1500, places.RadiusMeters(1.5))
}
