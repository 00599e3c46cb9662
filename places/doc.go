// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package places discovers restaurants through a places web API and turns the
raw results into validated Restaurant values.

# Nearby Search

	client := places.NewClient(http.DefaultClient, apiKey, baseURL, slog.Default())
	found, err := client.Nearby(ctx, places.NearbyQuery{
		Lat: 41.0082, Lng: 28.9784, RadiusMeters: 5000, MinRating: 4.0,
	})

Results without a place id, a name or a usable location are dropped at this
boundary. Results without a rating, or rated below MinRating, are filtered
out. When nothing survives, Nearby returns ErrNoResults. Transport errors,
non-200 responses and API statuses other than OK or ZERO_RESULTS are wrapped
in ErrUpstream.

# Filtering

Filter narrows a result set around an origin:

	f, err := places.NewFilter("kebap", 3, "rating >= 4.5 && price_level <= 2")
	matches := f.Apply(origin, found)

The optional where clause is an expr-lang expression evaluated against
rating, price_level, distance_km and name.

# Links

PhotoURL builds a photo URL for a photo reference. DirectionsFor returns web
links that open a restaurant in Google Maps, Apple Maps and Yandex Maps.
*/
package places
