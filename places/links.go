// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package places

import (
	"math"
	"net/url"
	"strings"
)

// Directions holds web links that open a restaurant in map apps.
type Directions struct {
	GoogleSearch     string `json:"google_search"`
	GoogleDirections string `json:"google_directions"`
	AppleMaps        string `json:"apple_maps"`
	YandexMaps       string `json:"yandex_maps"`
}

// DirectionsFor builds the links for r.
func DirectionsFor(r Restaurant) Directions {
	dest := formatCoord(r.Latitude) + "," + formatCoord(r.Longitude)

	search := url.Values{}
	search.Set("api", "1")
	search.Set("query", r.Name)
	search.Set("query_place_id", r.ID)

	dir := url.Values{}
	dir.Set("api", "1")
	dir.Set("destination", dest)

	apple := url.Values{}
	apple.Set("daddr", dest)
	apple.Set("q", r.Name)

	yandex := url.Values{}
	yandex.Set("rtext", "~"+dest)
	yandex.Set("rtt", "auto")

	return Directions{
		GoogleSearch:     "https://www.google.com/maps/search/?" + search.Encode(),
		GoogleDirections: "https://www.google.com/maps/dir/?" + dir.Encode(),
		AppleMaps:        "https://maps.apple.com/?" + apple.Encode(),
		YandexMaps:       "https://yandex.com/maps/?" + yandex.Encode(),
	}
}

// PriceLabel renders a price level as repeated currency signs, at least one.
func PriceLabel(level int, sign string) string {
	if sign == "" {
		sign = "$"
	}
	if level < 1 {
		level = 1
	}
	return strings.Repeat(sign, level)
}

// RadiusMeters converts a kilometer radius to the integer meters the API
// expects.
func RadiusMeters(km float64) int {
	return int(math.Round(km * 1000))
}
